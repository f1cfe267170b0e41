package service

import (
	"errors"
	"messenger_backend/internal/model"
	"messenger_backend/internal/repository"
	"messenger_backend/internal/util"

	"gorm.io/gorm"
)

type FriendshipService struct {
	FriendRepo *repository.FriendshipRepository
	UserRepo   *repository.UserRepository
}

func NewFriendshipService(friendRepo *repository.FriendshipRepository, userRepo *repository.UserRepository) *FriendshipService {
	return &FriendshipService{
		FriendRepo: friendRepo,
		UserRepo:   userRepo,
	}
}

// SendFriendRequest 发起好友申请
// 拒绝自我申请与同方向重复的 pending 申请；若对方已先发出申请则直接互相成为好友
func (s *FriendshipService) SendFriendRequest(senderID, receiverID uint, message string) (*model.FriendRequest, error) {
	if senderID == receiverID {
		return nil, util.ErrSelfRequest
	}

	if _, err := s.UserRepo.FindByID(receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	isFriend, err := s.FriendRepo.IsFriend(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if isFriend {
		return nil, util.ErrAlreadyFriends
	}

	if _, err := s.FriendRepo.GetPendingBetween(senderID, receiverID); err == nil {
		return nil, util.ErrDuplicateRequest
	}

	// 对方已经发过申请，视为双方同意
	if reciprocal, err := s.FriendRepo.GetPendingBetween(receiverID, senderID); err == nil {
		if err := s.FriendRepo.Accept(reciprocal); err != nil {
			return nil, err
		}
		return reciprocal, nil
	}

	req := &model.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		Status:     model.RequestPending,
	}
	if err := s.FriendRepo.CreateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetPendingRequests 返回待处理申请，发送者裁剪为公开信息
func (s *FriendshipService) GetPendingRequests(userID uint) ([]model.FriendRequestInfo, error) {
	reqs, err := s.FriendRepo.GetPendingRequests(userID)
	if err != nil {
		return nil, err
	}

	infos := make([]model.FriendRequestInfo, 0, len(reqs))
	for i := range reqs {
		infos = append(infos, reqs[i].Info())
	}
	return infos, nil
}

// AcceptFriendRequest 接受好友申请，只有申请的接收者可以操作
// 对已接受的申请重复调用是无操作，好友关系不会重复写入
func (s *FriendshipService) AcceptFriendRequest(requestID string, actingUserID uint) error {
	req, err := s.FriendRepo.GetRequest(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRequestNotFound
		}
		return err
	}

	if req.ReceiverID != actingUserID {
		return util.ErrPermissionDenied
	}

	switch req.Status {
	case model.RequestAccepted:
		return nil
	case model.RequestDeclined:
		return util.ErrRequestHandled
	}

	return s.FriendRepo.Accept(req)
}

// DeclineFriendRequest 拒绝好友申请，只有申请的接收者可以操作
func (s *FriendshipService) DeclineFriendRequest(requestID string, actingUserID uint) error {
	req, err := s.FriendRepo.GetRequest(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRequestNotFound
		}
		return err
	}

	if req.ReceiverID != actingUserID {
		return util.ErrPermissionDenied
	}

	switch req.Status {
	case model.RequestDeclined:
		return nil
	case model.RequestAccepted:
		return util.ErrRequestHandled
	}

	return s.FriendRepo.UpdateRequestStatus(requestID, model.RequestDeclined)
}

func (s *FriendshipService) GetFriendIDs(userID uint) ([]uint, error) {
	return s.FriendRepo.GetFriendIDsCached(userID)
}

func (s *FriendshipService) GetFriends(userID uint) ([]model.User, error) {
	return s.FriendRepo.GetFriends(userID)
}
