package service

import (
	"errors"
	"messenger_backend/internal/model"
	"messenger_backend/internal/repository"
	"messenger_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo   *repository.UserRepository
	FriendRepo *repository.FriendshipRepository
}

func NewUserService(userRepo *repository.UserRepository, friendRepo *repository.FriendshipRepository) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		FriendRepo: friendRepo,
	}
}

// Profile 当前用户资料及好友 ID 列表
type Profile struct {
	model.PublicProfile
	Email   string `json:"email"`
	Friends []uint `json:"friends"`
}

func (s *UserService) GetProfile(userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	friends, err := s.FriendRepo.GetFriendIDsCached(userID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []uint{}
	}

	return &Profile{
		PublicProfile: user.Public(),
		Email:         user.Email,
		Friends:       friends,
	}, nil
}

// UpdateAvatar 覆盖用户头像引用并返回更新后的资料
func (s *UserService) UpdateAvatar(userID uint, avatarURL string) (*Profile, error) {
	if err := s.UserRepo.UpdateAvatar(userID, avatarURL); err != nil {
		return nil, err
	}
	return s.GetProfile(userID)
}
