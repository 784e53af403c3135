package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tiktik/tiktik/internal/apperror"
	"github.com/tiktik/tiktik/internal/model"
)

func TestNotifications_RoundTripAndMarkRead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")

	n := &model.Notification{UserID: user.ID, Type: "new_subscriber", Title: "You have a new subscriber"}
	if err := db.Activity().CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	list, err := db.Activity().ListNotifications(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(list) != 1 || list[0].IsRead {
		t.Fatalf("list = %v, want one unread notification", list)
	}

	if err := db.Activity().MarkNotificationRead(ctx, n.ID); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}

	list, err = db.Activity().ListNotifications(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if !list[0].IsRead {
		t.Error("notification not marked read")
	}
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Activity().MarkNotificationRead(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateReport(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")
	video := createTestVideo(t, db, user.ID, "clip")

	report := &model.Report{ReporterID: user.ID, VideoID: video.ID, Reason: "spam"}
	if err := db.Activity().CreateReport(ctx, report); err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}
	if report.ID == "" || report.Status != "pending" {
		t.Errorf("report = %+v, want ID set and status pending", report)
	}
}

func TestRevenueAndMemberships_EmptyForNewUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")

	revenue, err := db.Activity().RevenueByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("RevenueByUser() error = %v", err)
	}
	if len(revenue) != 0 {
		t.Errorf("revenue = %v, want empty", revenue)
	}

	memberships, err := db.Activity().MembershipsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("MembershipsByUser() error = %v", err)
	}
	if len(memberships) != 0 {
		t.Errorf("memberships = %v, want empty", memberships)
	}
}
