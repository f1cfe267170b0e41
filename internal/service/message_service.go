package service

import (
	"errors"
	"messenger_backend/internal/model"
	"messenger_backend/internal/repository"
	"messenger_backend/internal/util"

	"gorm.io/gorm"
)

type MessageService struct {
	MessageRepo *repository.MessageRepository
	UserRepo    *repository.UserRepository
}

func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository) *MessageService {
	return &MessageService{
		MessageRepo: messageRepo,
		UserRepo:    userRepo,
	}
}

// SendMessage 持久化一条定向消息，时间戳由入库时生成
// senderID 必须来自已验证的令牌，不信任客户端提交的值
func (s *MessageService) SendMessage(senderID, receiverID uint, content, mediaURL string) (*model.DirectMessage, error) {
	if content == "" && mediaURL == "" {
		return nil, util.ErrEmptyMessage
	}

	if _, err := s.UserRepo.FindByID(receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	msg := &model.DirectMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		MediaURL:   mediaURL,
	}
	if err := s.MessageRepo.Create(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetConversation 返回两个用户之间的全部消息，双方裁剪为公开信息
func (s *MessageService) GetConversation(userA, userB uint) ([]model.DirectMessageInfo, error) {
	msgs, err := s.MessageRepo.GetConversation(userA, userB)
	if err != nil {
		return nil, err
	}

	infos := make([]model.DirectMessageInfo, 0, len(msgs))
	for i := range msgs {
		infos = append(infos, msgs[i].Info())
	}
	return infos, nil
}
