package redis

import "time"

// RelayFailedTask is an expert answer that was stored but never reached the asker
type RelayFailedTask struct {
	TaskID            string    `json:"task_id"`
	QuestionChatID    int64     `json:"question_chat_id"`
	QuestionMsgID     int       `json:"question_msg_id"`
	ExpertAnswerText  string    `json:"expert_answer_text"`
	ExpertAnswerMsgID int       `json:"expert_answer_msg_id"`
	ExpertUserID      int64     `json:"expert_user_id"`
	CreatedAt         time.Time `json:"created_at"`
}
