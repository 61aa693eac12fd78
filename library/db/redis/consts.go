package redis

const (
	keyPrefix     = "laisky/qabot/"
	keyPrefixTask = keyPrefix + "tasks/"

	// KeyPrefixPendingQuestion is the key prefix for questions waiting for an expert escalation
	KeyPrefixPendingQuestion = keyPrefix + "pending/"
	// KeyTaskRelayFailed is the list of expert answers that could not be delivered to the asker
	KeyTaskRelayFailed = keyPrefixTask + "relay_failed/"
)
