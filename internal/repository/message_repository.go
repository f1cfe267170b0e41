package repository

import (
	"messenger_backend/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Create(msg *model.DirectMessage) error {
	return r.DB.Create(msg).Error
}

// GetConversation 查询两个用户之间的全部消息，按创建时间升序
// (userA,userB) 与 (userB,userA) 返回同一结果
func (r *MessageRepository) GetConversation(userA, userB uint) ([]model.DirectMessage, error) {
	var msgs []model.DirectMessage
	err := r.DB.Preload("Sender").Preload("Receiver").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}
