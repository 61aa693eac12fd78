package service

const (
	phraseRateAnswers  = "Please rate the answers above. Not satisfied? Our experts can help."
	phraseAskExperts   = "Ask the experts?"
	phraseExpertsOnIt  = "_Experts are already looking at your question!_"
	phraseThanksPlain  = "THANK YOU FOR MAKING ME BETTER!"
	phraseThanks       = "*" + phraseThanksPlain + "*"
	phraseExpertSays   = "_Expert says:_\n\n%s"
	phrasePredictorTpl = "%s said:\n\n%s"
)
