package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payrexx-gateway/internal/mailer"
)

// Service is the order-side contract the payment integration consumes:
// lookup by number, a string attribute store, audit notes and the
// guarded lifecycle transitions.
type Service struct {
	db     *gorm.DB
	mailer mailer.Service
	logger *slog.Logger

	// sender address for customer notifications
	fromName string
	fromAddr string
}

func NewService(db *gorm.DB, m mailer.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		mailer:   m,
		logger:   logger,
		fromName: "Shop",
		fromAddr: "no-reply@local.test",
	}
}

func (s *Service) SetSender(name, addr string) {
	s.fromName = name
	s.fromAddr = addr
}

func (s *Service) ByNumber(ctx context.Context, number string) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).First(&o, "number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Attribute returns the stored value for name, or "" when unset.
func (s *Service) Attribute(ctx context.Context, orderID, name string) (string, error) {
	var attr OrderAttribute
	err := s.db.WithContext(ctx).First(&attr, "order_id = ? AND name = ?", orderID, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return attr.Value, nil
}

func (s *Service) SaveAttribute(ctx context.Context, orderID, name, value string) error {
	now := time.Now()
	attr := OrderAttribute{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Name:      name,
		Value:     value,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&attr).Error; err != nil {
		if !isDup(err) {
			return err
		}
		return s.db.WithContext(ctx).Model(&OrderAttribute{}).
			Where("order_id = ? AND name = ?", orderID, name).
			Updates(map[string]any{"value": value, "updated_at": now}).Error
	}
	return nil
}

func (s *Service) DeleteAttribute(ctx context.Context, orderID, name string) error {
	return s.db.WithContext(ctx).
		Delete(&OrderAttribute{}, "order_id = ? AND name = ?", orderID, name).Error
}

// AddNote appends an internal audit note; payload carries the raw
// webhook body when the note originates from a notification.
func (s *Service) AddNote(ctx context.Context, orderID, note string, payload []byte) error {
	n := OrderNote{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	if len(payload) > 0 {
		n.Payload = datatypes.JSON(payload)
	}
	return s.db.WithContext(ctx).Create(&n).Error
}

// Notes lists the audit notes of an order, newest first.
func (s *Service) Notes(ctx context.Context, orderID string) ([]OrderNote, error) {
	var notes []OrderNote
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// MarkPaid records the capture transaction id and moves the order to
// paid. The caller consults CanMarkPaid first; the status predicate in
// the update keeps a concurrent transition from double-applying.
func (s *Service) MarkPaid(ctx context.Context, o *Order, captureTransactionID string) error {
	return s.transition(ctx, o, []string{StatusPending, StatusAuthorized}, map[string]any{
		"status":                 StatusPaid,
		"capture_transaction_id": captureTransactionID,
		"paid_at":                time.Now(),
	})
}

// MarkAuthorized records the authorization transaction id.
func (s *Service) MarkAuthorized(ctx context.Context, o *Order, authorizationTransactionID string) error {
	return s.transition(ctx, o, []string{StatusPending}, map[string]any{
		"status":                       StatusAuthorized,
		"authorization_transaction_id": authorizationTransactionID,
	})
}

// SetPending forces the order back to pending; used when the remote
// invoice reports it is still awaiting payment.
func (s *Service) SetPending(ctx context.Context, o *Order) error {
	if o.Status == StatusPending {
		return nil
	}
	return s.transition(ctx, o, []string{o.Status}, map[string]any{"status": StatusPending})
}

// RecheckStatus re-derives the order status from its payment facts,
// promoting a pending order that was already captured back to paid.
func (s *Service) RecheckStatus(ctx context.Context, o *Order) error {
	if o.Status != StatusPending {
		return nil
	}
	if o.PaidAt == nil || o.CaptureTransactionID == nil {
		return nil
	}
	return s.transition(ctx, o, []string{StatusPending}, map[string]any{"status": StatusPaid})
}

// Cancel moves the order to cancelled and optionally notifies the
// customer by mail. A notification failure is logged, not returned;
// the cancellation itself has already been committed.
func (s *Service) Cancel(ctx context.Context, o *Order, notifyCustomer bool) error {
	err := s.transition(ctx, o, []string{StatusPending, StatusAuthorized}, map[string]any{
		"status":       StatusCancelled,
		"cancelled_at": time.Now(),
	})
	if err != nil {
		return err
	}

	if notifyCustomer && s.mailer != nil && o.BillingEmail != "" {
		mail := mailer.Email{
			FromName: s.fromName,
			From:     s.fromAddr,
			To:       []string{o.BillingEmail},
			Subject:  fmt.Sprintf("Order #%s cancelled", o.Number),
			TextBody: fmt.Sprintf("Your order #%s has been cancelled. If you already paid, the amount will be returned to you.\n", o.Number),
		}
		if err := s.mailer.Send(ctx, mail); err != nil {
			s.logger.ErrorContext(ctx, "order cancel notification failed",
				"order_id", o.ID, "err", err)
		}
	}
	return nil
}

// Refund refunds the full order total.
func (s *Service) Refund(ctx context.Context, o *Order) error {
	now := time.Now()
	return s.transition(ctx, o, []string{StatusPaid}, map[string]any{
		"status":          StatusRefunded,
		"refunded_amount": o.TotalAmount,
		"refunded_at":     now,
	})
}

// PartialRefund adds amount to the refunded total; when the whole
// total is reached the order becomes refunded, otherwise partially
// refunded.
func (s *Service) PartialRefund(ctx context.Context, o *Order, amount float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur Order
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&cur, "id = ?", o.ID).Error; err != nil {
			return err
		}
		if !cur.CanPartialRefund(amount) {
			return ErrInvalidTransition
		}

		now := time.Now()
		newRefunded := cur.RefundedAmount + amount
		newStatus := StatusPartiallyRefunded
		updates := map[string]any{
			"refunded_amount": newRefunded,
			"status":          newStatus,
			"updated_at":      now,
		}
		if newRefunded >= cur.TotalAmount {
			updates["refunded_amount"] = cur.TotalAmount
			updates["status"] = StatusRefunded
			updates["refunded_at"] = now
		}
		if err := tx.WithContext(ctx).Model(&Order{}).
			Where("id = ?", cur.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).First(o, "id = ?", cur.ID).Error
	})
}

// transition applies updates to o when its current status is one of
// from, under a row lock, and refreshes o with the committed state.
func (s *Service) transition(ctx context.Context, o *Order, from []string, updates map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur Order
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&cur, "id = ?", o.ID).Error; err != nil {
			return err
		}

		allowed := false
		for _, st := range from {
			if cur.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrInvalidTransition
		}

		updates["updated_at"] = time.Now()
		if err := tx.WithContext(ctx).Model(&Order{}).
			Where("id = ? AND status = ?", cur.ID, cur.Status). // optimistic guard
			Updates(updates).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).First(o, "id = ?", cur.ID).Error
	})
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
