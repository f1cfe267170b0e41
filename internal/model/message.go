package model

import "time"

// DirectMessage 两个用户之间的定向消息，入库后不可修改
// Content 与 MediaURL 至少一个非空，时间戳由服务端在入库时生成
type DirectMessage struct {
	UUIDBase
	SenderID   uint   `gorm:"index:idx_pair;not null" json:"senderId"`
	Sender     User   `gorm:"foreignKey:SenderID;references:ID;constraint:false" json:"-"`
	ReceiverID uint   `gorm:"index:idx_pair;not null" json:"receiverId"`
	Receiver   User   `gorm:"foreignKey:ReceiverID;references:ID;constraint:false" json:"-"`
	Content    string `gorm:"type:text" json:"content"`
	MediaURL   string `gorm:"size:255" json:"mediaUrl"`
}

func (DirectMessage) TableName() string {
	return "direct_messages"
}

// DirectMessageInfo 对外返回的消息，双方只暴露公开信息
type DirectMessageInfo struct {
	ID         string        `json:"id"`
	SenderID   uint          `json:"senderId"`
	ReceiverID uint          `json:"receiverId"`
	Content    string        `json:"content"`
	MediaURL   string        `json:"mediaUrl"`
	CreatedAt  time.Time     `json:"createdAt"`
	Sender     PublicProfile `json:"sender"`
	Receiver   PublicProfile `json:"receiver"`
}

func (m *DirectMessage) Info() DirectMessageInfo {
	return DirectMessageInfo{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		MediaURL:   m.MediaURL,
		CreatedAt:  m.CreatedAt,
		Sender:     m.Sender.Public(),
		Receiver:   m.Receiver.Public(),
	}
}
