package mq

import "time"

// RoutingKeyVerificationDecided 审核结果事件路由键
const RoutingKeyVerificationDecided = "user.verification.decided"

// VerificationDecidedEvent 管理员对学生/商家作出审核决定后发布
type VerificationDecidedEvent struct {
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	UserType       string    `json:"userType"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus"`
	Reason         string    `json:"reason,omitempty"`
	DecidedBy      string    `json:"decidedBy"`
	DecidedAt      time.Time `json:"decidedAt"`
}
