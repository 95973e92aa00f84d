// Package points owns mutations of the User.Points balance. The debit path
// guards the balance inside the UPDATE statement itself, so two sessions
// racing on the same remaining balance cannot both succeed.
package points

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sreejitadass/ContentCrafter/internal/models"
	"gorm.io/gorm"
)

// ErrInsufficientPoints reports a debit larger than the remaining balance.
var ErrInsufficientPoints = errors.New("points: insufficient balance")

// ErrUserNotFound reports an unknown user external ID.
var ErrUserNotFound = errors.New("points: user not found")

// Balance returns the current point balance for a user.
func Balance(ctx context.Context, conn *gorm.DB, externalID string) (int64, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return 0, fmt.Errorf("points: empty user id")
	}
	var user models.User
	if errFind := conn.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("points: query balance: %w", errFind)
	}
	return user.Points, nil
}

// Debit decrements a user's balance by cost only when the balance covers it.
// It returns the balance after the attempt; on ErrInsufficientPoints the
// returned balance is the untouched current value.
func Debit(ctx context.Context, tx *gorm.DB, externalID string, cost int64) (int64, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return 0, fmt.Errorf("points: empty user id")
	}
	if cost <= 0 {
		return 0, fmt.Errorf("points: non-positive cost %d", cost)
	}

	res := tx.WithContext(ctx).Model(&models.User{}).
		Where("external_id = ? AND points >= ?", externalID, cost).
		Updates(map[string]any{
			"points":     gorm.Expr("points - ?", cost),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("points: debit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the user is missing or the balance fell short; tell them apart.
		balance, errBalance := Balance(ctx, tx, externalID)
		if errBalance != nil {
			return 0, errBalance
		}
		return balance, ErrInsufficientPoints
	}
	return Balance(ctx, tx, externalID)
}

// Adjust applies a signed delta to a user's balance with no floor or ceiling
// and returns the updated user.
func Adjust(ctx context.Context, conn *gorm.DB, externalID string, delta int64) (models.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return models.User{}, fmt.Errorf("points: empty user id")
	}

	res := conn.WithContext(ctx).Model(&models.User{}).
		Where("external_id = ?", externalID).
		Updates(map[string]any{
			"points":     gorm.Expr("points + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return models.User{}, fmt.Errorf("points: adjust: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.User{}, ErrUserNotFound
	}

	var user models.User
	if errFind := conn.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&user).Error; errFind != nil {
		return models.User{}, fmt.Errorf("points: reload user: %w", errFind)
	}
	return user, nil
}
