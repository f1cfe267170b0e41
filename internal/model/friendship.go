package model

import "time"

const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// Friendship 好友关系表，每对好友写两行（双向）
type Friendship struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	FriendID  uint      `gorm:"primaryKey" json:"friendId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// FriendRequest 好友申请表
// 状态只允许 pending -> accepted 或 pending -> declined，记录不删除
type FriendRequest struct {
	UUIDBase
	SenderID   uint   `gorm:"index;not null" json:"senderId"`
	Sender     User   `gorm:"foreignKey:SenderID;references:ID;constraint:false" json:"-"`
	ReceiverID uint   `gorm:"index;not null" json:"receiverId"`
	Receiver   User   `gorm:"foreignKey:ReceiverID;references:ID;constraint:false" json:"-"`
	Status     string `gorm:"size:20;default:'pending'" json:"status"`
	Message    string `gorm:"size:255" json:"message"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

// FriendRequestInfo 对外返回的好友申请，发送者只暴露公开信息
type FriendRequestInfo struct {
	ID         string        `json:"id"`
	SenderID   uint          `json:"senderId"`
	ReceiverID uint          `json:"receiverId"`
	Status     string        `json:"status"`
	Message    string        `json:"message"`
	CreatedAt  time.Time     `json:"createdAt"`
	Sender     PublicProfile `json:"sender"`
}

func (r *FriendRequest) Info() FriendRequestInfo {
	return FriendRequestInfo{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Status:     r.Status,
		Message:    r.Message,
		CreatedAt:  r.CreatedAt,
		Sender:     r.Sender.Public(),
	}
}
