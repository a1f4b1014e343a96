package portal

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/emeraldsmp/portal/pkg/models"
	"github.com/emeraldsmp/portal/pkg/store"
)

// canAccessChat reports whether the actor may see the thread attached
// to the given application: the applicant and reviewers only.
func (s *Service) canAccessChat(ctx context.Context, actor *models.UserAccount, entry *models.ApplicationEntry) bool {
	if actor == nil {
		return false
	}
	if entry.UserID == actor.ID {
		return true
	}
	return s.policy(ctx).Has(actor.Role, models.PermManageApplications)
}

// Chat returns the message thread for one application, or an empty open
// thread if none exists yet.
func (s *Service) Chat(ctx context.Context, actor *models.UserAccount, appID string) (*models.ApplicationChat, error) {
	entry, err := s.store.Applications.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if !s.canAccessChat(ctx, actor, entry) {
		return nil, ErrChatAccessDenied
	}

	chat, err := s.store.Chats.Get(ctx, appID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		chat = &models.ApplicationChat{
			AppID:    appID,
			Status:   models.ChatOpen,
			Messages: []models.ChatMessage{},
		}
	}
	return chat, nil
}

// SendMessage appends one message to the thread. A closed thread
// rejects new messages from everyone until a reviewer reopens it. Any
// staff message latches InitiatedByStaff so the applicant's UI can
// surface that a reviewer reached out.
func (s *Service) SendMessage(ctx context.Context, actor *models.UserAccount, appID, text string) (*models.ApplicationChat, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("message text is empty")
	}

	chat, err := s.Chat(ctx, actor, appID)
	if err != nil {
		return nil, err
	}
	if chat.Status == models.ChatClosed {
		return nil, ErrChatClosed
	}

	if !chat.InitiatedByStaff && s.policy(ctx).Has(actor.Role, models.PermManageApplications) {
		chat.InitiatedByStaff = true
	}

	chat.Messages = append(chat.Messages, models.ChatMessage{
		ID:         uuid.New().String(),
		SenderID:   actor.ID,
		SenderName: actor.DisplayName,
		SenderRole: actor.Role,
		Text:       text,
		Timestamp:  s.now(),
	})

	if err := s.store.Chats.Save(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// SetChatStatus opens or closes a thread. Reviewer only.
func (s *Service) SetChatStatus(ctx context.Context, actor *models.UserAccount, appID string, status models.ChatStatus) (*models.ApplicationChat, error) {
	if err := s.authorize(ctx, actor, models.PermManageApplications); err != nil {
		return nil, err
	}
	if status != models.ChatOpen && status != models.ChatClosed {
		return nil, errors.New("unknown chat status")
	}

	chat, err := s.Chat(ctx, actor, appID)
	if err != nil {
		return nil, err
	}
	chat.Status = status
	if err := s.store.Chats.Save(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// DeleteChat drops the whole thread.
func (s *Service) DeleteChat(ctx context.Context, actor *models.UserAccount, appID string) error {
	if err := s.authorize(ctx, actor, models.PermManageApplications); err != nil {
		return err
	}
	return s.store.Chats.Delete(ctx, appID)
}
