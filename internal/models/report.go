package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/pager"
)

var ErrNotFound = errors.New("not found")

// FileReport records a report against an existing question.
func FileReport(ctx context.Context, db *gorm.DB, recorder *audit.Recorder, questionID, message, submitter string) (*TriviaReport, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: report message is required", pager.ErrInvalidArgument)
	}

	report := &TriviaReport{
		ID:         NewID(TypeTriviaReport),
		QuestionID: questionID,
		Message:    message,
		Submitter:  submitter,
	}

	err := recorder.Transaction(ctx, db, func(tx *audit.Tx) error {
		var exists int64
		if err := tx.DB().Model(&TriviaQuestion{}).Where("id = ?", questionID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("question %s: %w", questionID, ErrNotFound)
		}

		return tx.Create(report)
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}
