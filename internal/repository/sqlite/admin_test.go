package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/faq-chatbot/internal/apperror"
	"github.com/sakif/faq-chatbot/internal/model"
)

func createTestAdmin(t *testing.T, db *DB, username string) *model.Admin {
	t.Helper()
	a := &model.Admin{Username: username, PasswordHash: "$2a$04$fakehashfortests"}
	if err := db.CreateAdmin(context.Background(), a); err != nil {
		t.Fatalf("failed to create test admin: %v", err)
	}
	return a
}

func TestCreateAdmin(t *testing.T) {
	db := newTestDB(t)
	a := createTestAdmin(t, db, "alice")

	if a.ID == 0 {
		t.Error("CreateAdmin() did not set ID")
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreateAdmin() did not set CreatedAt")
	}

	found, err := db.GetAdminByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetAdminByID() error = %v", err)
	}
	if found.Username != "alice" || found.PasswordHash != a.PasswordHash {
		t.Errorf("GetAdminByID() = %+v", found)
	}
}

func TestCreateAdmin_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestAdmin(t, db, "alice")

	err := db.CreateAdmin(context.Background(), &model.Admin{Username: "alice", PasswordHash: "x"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateAdmin() error = %v, want ErrConflict", err)
	}
}

func TestGetAdminByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestAdmin(t, db, "bob")

	found, err := db.GetAdminByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetAdminByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}

	_, err = db.GetAdminByUsername(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetAdminByUsername(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestListAdmins(t *testing.T) {
	db := newTestDB(t)
	createTestAdmin(t, db, "alice")
	createTestAdmin(t, db, "bob")

	admins, err := db.ListAdmins(context.Background())
	if err != nil {
		t.Fatalf("ListAdmins() error = %v", err)
	}
	if len(admins) != 2 || admins[0].Username != "alice" || admins[1].Username != "bob" {
		t.Errorf("ListAdmins() = %+v", admins)
	}
}

func TestUpdateAdmin(t *testing.T) {
	db := newTestDB(t)
	a := createTestAdmin(t, db, "alice")
	createTestAdmin(t, db, "bob")

	a.Username = "alice2"
	if err := db.UpdateAdmin(context.Background(), a); err != nil {
		t.Fatalf("UpdateAdmin() error = %v", err)
	}

	a.Username = "bob"
	if err := db.UpdateAdmin(context.Background(), a); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("UpdateAdmin() to taken username error = %v, want ErrConflict", err)
	}

	err := db.UpdateAdmin(context.Background(), &model.Admin{ID: 404, Username: "x", PasswordHash: "y"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateAdmin() missing error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAdmin_KeepsQuestions(t *testing.T) {
	db := newTestDB(t)
	a := createTestAdmin(t, db, "alice")

	q := &model.Question{QuestionText: "owned", AnswerText: "yes", OwnerID: &a.ID}
	if err := db.Create(context.Background(), q); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	owned, err := db.FindByOwner(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("FindByOwner() error = %v", err)
	}
	if len(owned) != 1 {
		t.Fatalf("FindByOwner() returned %d rows, want 1", len(owned))
	}

	if err := db.DeleteAdmin(context.Background(), a.ID); err != nil {
		t.Fatalf("DeleteAdmin() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("question vanished with its admin: %v", err)
	}
	if found.OwnerID != nil {
		t.Errorf("OwnerID = %d after admin delete, want nil", *found.OwnerID)
	}
}

func TestDeleteAdmin_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteAdmin(context.Background(), 9)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteAdmin() error = %v, want ErrNotFound", err)
	}
}
