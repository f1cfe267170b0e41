package service

import (
	"encoding/json"
	"errors"
	"messenger_backend/internal/model"
	"messenger_backend/internal/util"
	"strings"
	"testing"
)

func countFriendships(t *testing.T, svc *FriendshipService, userID, friendID uint) int64 {
	t.Helper()

	var count int64
	err := svc.FriendRepo.DB.Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count friendships: %v", err)
	}
	return count
}

func TestSendFriendRequestToSelf(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")

	if _, err := svc.SendFriendRequest(u1.ID, u1.ID, ""); !errors.Is(err, util.ErrSelfRequest) {
		t.Fatalf("expected ErrSelfRequest, got %v", err)
	}
}

func TestSendFriendRequestUnknownReceiver(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")

	if _, err := svc.SendFriendRequest(u1.ID, 999, ""); !errors.Is(err, util.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSendFriendRequestDuplicatePending(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	if _, err := svc.SendFriendRequest(u1.ID, u2.ID, "hi"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := svc.SendFriendRequest(u1.ID, u2.ID, "hi again"); !errors.Is(err, util.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
}

func TestAcceptFriendRequestFlow(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	req, err := svc.SendFriendRequest(u1.ID, u2.ID, "你好")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	// u2 的待处理列表应包含 u1 的申请，附带发送者公开信息
	pending, err := svc.GetPendingRequests(u2.ID)
	if err != nil {
		t.Fatalf("pending requests: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	if pending[0].SenderID != u1.ID || pending[0].Sender.Name != "u1" {
		t.Fatalf("unexpected pending request: %+v", pending[0])
	}

	if err := svc.AcceptFriendRequest(req.ID, u2.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// 双向好友关系各写入一次
	if got := countFriendships(t, svc, u1.ID, u2.ID); got != 1 {
		t.Fatalf("u1->u2 friendship rows = %d, want 1", got)
	}
	if got := countFriendships(t, svc, u2.ID, u1.ID); got != 1 {
		t.Fatalf("u2->u1 friendship rows = %d, want 1", got)
	}

	stored, err := svc.FriendRepo.GetRequest(req.ID)
	if err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if stored.Status != model.RequestAccepted {
		t.Fatalf("request status = %s, want accepted", stored.Status)
	}

	// 处理后不再出现在待处理列表
	pending, err = svc.GetPendingRequests(u2.ID)
	if err != nil {
		t.Fatalf("pending requests after accept: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending requests, got %d", len(pending))
	}
}

func TestPendingRequestsExposeOnlyPublicSenderInfo(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	if _, err := svc.SendFriendRequest(u1.ID, u2.ID, "hi"); err != nil {
		t.Fatalf("send request: %v", err)
	}

	pending, err := svc.GetPendingRequests(u2.ID)
	if err != nil {
		t.Fatalf("pending requests: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}

	payload, err := json.Marshal(pending)
	if err != nil {
		t.Fatalf("marshal pending: %v", err)
	}
	body := string(payload)

	// 发送者只暴露 id/name/avatar，邮箱等私有字段不得出现
	for _, secret := range []string{"email", "@example.com", "password", "disabled", "lastSeen"} {
		if strings.Contains(body, secret) {
			t.Fatalf("pending request payload leaks %q: %s", secret, body)
		}
	}
	if !strings.Contains(body, `"name":"u1"`) {
		t.Fatalf("expected sender public profile in payload: %s", body)
	}
	// 接收者是当前用户本人，不渲染空的 receiver 对象
	if strings.Contains(body, `"receiver"`) {
		t.Fatalf("payload renders a receiver object: %s", body)
	}
}

func TestAcceptFriendRequestIdempotent(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	req, err := svc.SendFriendRequest(u1.ID, u2.ID, "")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	if err := svc.AcceptFriendRequest(req.ID, u2.ID); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	// 对同一申请重复接受是无操作
	if err := svc.AcceptFriendRequest(req.ID, u2.ID); err != nil {
		t.Fatalf("second accept should be a no-op, got %v", err)
	}

	if got := countFriendships(t, svc, u1.ID, u2.ID); got != 1 {
		t.Fatalf("u1->u2 friendship rows = %d, want 1", got)
	}
	if got := countFriendships(t, svc, u2.ID, u1.ID); got != 1 {
		t.Fatalf("u2->u1 friendship rows = %d, want 1", got)
	}
}

func TestAcceptFriendRequestWrongUser(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")
	u3 := seedUser(t, db, "u3")

	req, err := svc.SendFriendRequest(u1.ID, u2.ID, "")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	// 只有接收者可以接受，发送者和第三方都不行
	if err := svc.AcceptFriendRequest(req.ID, u1.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("sender accept: expected ErrPermissionDenied, got %v", err)
	}
	if err := svc.AcceptFriendRequest(req.ID, u3.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("third party accept: expected ErrPermissionDenied, got %v", err)
	}

	if got := countFriendships(t, svc, u1.ID, u2.ID); got != 0 {
		t.Fatalf("friendship rows = %d, want 0", got)
	}
}

func TestAcceptFriendRequestNotFound(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")

	err := svc.AcceptFriendRequest(model.GenerateUUID(), u1.ID)
	if !errors.Is(err, util.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestDeclineFriendRequest(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	req, err := svc.SendFriendRequest(u1.ID, u2.ID, "")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	if err := svc.DeclineFriendRequest(req.ID, u1.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("sender decline: expected ErrPermissionDenied, got %v", err)
	}

	if err := svc.DeclineFriendRequest(req.ID, u2.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	stored, err := svc.FriendRepo.GetRequest(req.ID)
	if err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if stored.Status != model.RequestDeclined {
		t.Fatalf("request status = %s, want declined", stored.Status)
	}
	if got := countFriendships(t, svc, u1.ID, u2.ID); got != 0 {
		t.Fatalf("friendship rows = %d, want 0", got)
	}

	// 拒绝后不能再接受
	if err := svc.AcceptFriendRequest(req.ID, u2.ID); !errors.Is(err, util.ErrRequestHandled) {
		t.Fatalf("accept after decline: expected ErrRequestHandled, got %v", err)
	}
}

func TestAcceptDoesNotReverseDecline(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	req, err := svc.SendFriendRequest(u1.ID, u2.ID, "")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	if err := svc.DeclineFriendRequest(req.ID, u2.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	// 带着过期的 pending 快照直接写库，模拟与拒绝并发的接受
	if err := svc.FriendRepo.Accept(req); !errors.Is(err, util.ErrRequestHandled) {
		t.Fatalf("expected ErrRequestHandled, got %v", err)
	}

	stored, err := svc.FriendRepo.GetRequest(req.ID)
	if err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if stored.Status != model.RequestDeclined {
		t.Fatalf("request status = %s, want declined", stored.Status)
	}
	if got := countFriendships(t, svc, u1.ID, u2.ID); got != 0 {
		t.Fatalf("friendship rows = %d, want 0", got)
	}
}

func TestDeclineDoesNotReverseAccept(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	req, err := svc.SendFriendRequest(u1.ID, u2.ID, "")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	if err := svc.AcceptFriendRequest(req.ID, u2.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// 模拟与接受并发的拒绝：状态更新必须因终态而失败
	if err := svc.FriendRepo.UpdateRequestStatus(req.ID, model.RequestDeclined); !errors.Is(err, util.ErrRequestHandled) {
		t.Fatalf("expected ErrRequestHandled, got %v", err)
	}

	stored, err := svc.FriendRepo.GetRequest(req.ID)
	if err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if stored.Status != model.RequestAccepted {
		t.Fatalf("request status = %s, want accepted", stored.Status)
	}
	if got := countFriendships(t, svc, u1.ID, u2.ID); got != 1 {
		t.Fatalf("friendship rows = %d, want 1", got)
	}
}

func TestReciprocalRequestAutoAccept(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	if _, err := svc.SendFriendRequest(u1.ID, u2.ID, ""); err != nil {
		t.Fatalf("first request: %v", err)
	}
	// 对方也发起申请，视为双方同意
	if _, err := svc.SendFriendRequest(u2.ID, u1.ID, ""); err != nil {
		t.Fatalf("reciprocal request: %v", err)
	}

	if got := countFriendships(t, svc, u1.ID, u2.ID); got != 1 {
		t.Fatalf("u1->u2 friendship rows = %d, want 1", got)
	}
	if got := countFriendships(t, svc, u2.ID, u1.ID); got != 1 {
		t.Fatalf("u2->u1 friendship rows = %d, want 1", got)
	}
}

func TestGetFriendIDsAfterAccept(t *testing.T) {
	svc, db := newFriendshipService(t)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	req, err := svc.SendFriendRequest(u1.ID, u2.ID, "")
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	if err := svc.AcceptFriendRequest(req.ID, u2.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	ids, err := svc.GetFriendIDs(u1.ID)
	if err != nil {
		t.Fatalf("friend ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != u2.ID {
		t.Fatalf("u1 friends = %v, want [%d]", ids, u2.ID)
	}

	ids, err = svc.GetFriendIDs(u2.ID)
	if err != nil {
		t.Fatalf("friend ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != u1.ID {
		t.Fatalf("u2 friends = %v, want [%d]", ids, u1.ID)
	}
}
