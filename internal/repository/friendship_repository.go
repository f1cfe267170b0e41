package repository

import (
	"context"
	"fmt"
	"messenger_backend/internal/model"
	"messenger_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type FriendshipRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewFriendshipRepository(db *gorm.DB, rdb *redis.Client) *FriendshipRepository {
	return &FriendshipRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

func (r *FriendshipRepository) CreateRequest(req *model.FriendRequest) error {
	return r.DB.Create(req).Error
}

func (r *FriendshipRepository) GetRequest(id string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.DB.First(&req, "id = ?", id).Error
	return &req, err
}

// GetPendingRequests 查询收件人的待处理申请，附带发送者公开信息
func (r *FriendshipRepository) GetPendingRequests(userID uint) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := r.DB.Preload("Sender").
		Where("receiver_id = ? AND status = ?", userID, model.RequestPending).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *FriendshipRepository) GetPendingBetween(senderID, receiverID uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.DB.Where("sender_id = ? AND receiver_id = ? AND status = ?",
		senderID, receiverID, model.RequestPending).First(&req).Error
	return &req, err
}

// Accept 将申请置为 accepted 并建立双向好友关系
// 状态更新与两条 friendship 写入在同一事务内完成，重复调用不会产生重复行
// 状态更新带 pending 谓词，已拒绝的申请不会被并发的接受翻转
func (r *FriendshipRepository) Accept(req *model.FriendRequest) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.FriendRequest{}).
			Where("id = ? AND status = ?", req.ID, model.RequestPending).
			Update("status", model.RequestAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已被并发处理：accepted 则继续幂等补齐好友关系，declined 则终止
			var current model.FriendRequest
			if err := tx.First(&current, "id = ?", req.ID).Error; err != nil {
				return err
			}
			if current.Status != model.RequestAccepted {
				return util.ErrRequestHandled
			}
		}

		// 反向的 pending 申请（互相添加的情况）一并置为 accepted
		if err := tx.Model(&model.FriendRequest{}).
			Where("sender_id = ? AND receiver_id = ? AND status = ?",
				req.ReceiverID, req.SenderID, model.RequestPending).
			Update("status", model.RequestAccepted).Error; err != nil {
			return err
		}

		pairs := []model.Friendship{
			{UserID: req.SenderID, FriendID: req.ReceiverID},
			{UserID: req.ReceiverID, FriendID: req.SenderID},
		}
		for _, f := range pairs {
			var count int64
			if err := tx.Model(&model.Friendship{}).
				Where("user_id = ? AND friend_id = ?", f.UserID, f.FriendID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&f).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err == nil && r.Redis != nil {
		// 清除关系缓存
		r.Redis.Del(r.ctx, fmt.Sprintf("relation:friends:%d", req.SenderID))
		r.Redis.Del(r.ctx, fmt.Sprintf("relation:friends:%d", req.ReceiverID))
	}
	return err
}

// UpdateRequestStatus 仅允许 pending 状态的申请变更状态，终态不可逆
func (r *FriendshipRepository) UpdateRequestStatus(id string, status string) error {
	res := r.DB.Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var current model.FriendRequest
		if err := r.DB.First(&current, "id = ?", id).Error; err != nil {
			return err
		}
		if current.Status != status {
			return util.ErrRequestHandled
		}
	}
	return nil
}

func (r *FriendshipRepository) IsFriend(userID, friendID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	return count > 0, err
}

// GetFriendIDs 获取好友的 ID 列表
func (r *FriendshipRepository) GetFriendIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Table("friendships").
		Where("user_id = ?", userID).
		Order("friend_id ASC").
		Pluck("friend_id", &ids).Error
	return ids, err
}

// GetFriendIDsCached 获取好友 ID 列表 (带缓存)
func (r *FriendshipRepository) GetFriendIDsCached(userID uint) ([]uint, error) {
	if r.Redis == nil {
		return r.GetFriendIDs(userID)
	}

	key := fmt.Sprintf("relation:friends:%d", userID)
	cached, err := r.Redis.SMembers(r.ctx, key).Result()
	if err == nil && len(cached) > 0 {
		var ids []uint
		for _, s := range cached {
			var id uint
			fmt.Sscanf(s, "%d", &id)
			if id > 0 {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	// 缓存失效，回源数据库
	ids, err := r.GetFriendIDs(userID)
	if err == nil && len(ids) > 0 {
		pipe := r.Redis.Pipeline()
		for _, id := range ids {
			pipe.SAdd(r.ctx, key, id)
		}
		pipe.Expire(r.ctx, key, 24*time.Hour)
		pipe.Exec(r.ctx)
	} else if err == nil {
		// 防止缓存穿透：存一个特殊值并设置短过期时间
		r.Redis.SAdd(r.ctx, key, 0)
		r.Redis.Expire(r.ctx, key, 5*time.Minute)
	}
	return ids, err
}

func (r *FriendshipRepository) GetFriends(userID uint) ([]model.User, error) {
	var friends []model.User
	err := r.DB.Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ?", userID).
		Find(&friends).Error
	return friends, err
}
