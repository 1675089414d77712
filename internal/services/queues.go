package services

import (
	"log/slog"

	"github.com/craftbazaar/moderation-engine/internal/actions"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QueueService reconciles case-service queue moves with the local
// needs-human-review flags.
type QueueService struct {
	db    *gorm.DB
	cases *CaseService

	// locallyResolvable names the external queues our own reviewer tools
	// may adjudicate.
	locallyResolvable map[string]bool
}

func NewQueueService(db *gorm.DB, cases *CaseService, locallyResolvableQueues []string) *QueueService {
	m := make(map[string]bool, len(locallyResolvableQueues))
	for _, q := range locallyResolvableQueues {
		m[q] = true
	}
	return &QueueService{db: db, cases: cases, locallyResolvable: m}
}

// ProcessQueueMove records a queue move and, when the destination queue is
// locally resolvable, marks the case resolvable and escalates the target's
// current version for human review. Moves OUT of locally-resolvable queues
// are recorded but deliberately do not clear the escalation flag: a case can
// bounce between queues and prematurely un-escalating is worse than leaving
// a stale flag for a reviewer to dismiss.
func (s *QueueService) ProcessQueueMove(caseID uuid.UUID, newQueue, notes string) error {
	c, err := s.cases.Get(caseID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		move := models.QueueMove{
			ID:     uuid.New(),
			CaseID: c.ID,
			Queue:  newQueue,
			Notes:  notes,
		}
		if err := tx.Create(&move).Error; err != nil {
			return err
		}
		if err := tx.Model(c).Update("from_queue", newQueue).Error; err != nil {
			return err
		}
		if !s.locallyResolvable[newQueue] {
			return nil
		}
		if !c.ResolvableLocally {
			if err := tx.Model(c).Update("resolvable_locally", true).Error; err != nil {
				return err
			}
		}
		return s.flagCurrentVersion(tx, c.TargetRef, models.ReviewFlagEscalation)
	})
}

// flagCurrentVersion raises a review flag on the target's current listing
// version. Idempotent; targets without versions are skipped.
func (s *QueueService) flagCurrentVersion(tx *gorm.DB, ref models.TargetRef, reason string) error {
	if ref.ListingID == nil {
		return nil
	}
	var l models.Listing
	if err := tx.Unscoped().First(&l, "id = ?", *ref.ListingID).Error; err != nil {
		return err
	}
	if l.CurrentVersionID == nil {
		slog.Warn("cannot flag listing without a current version", "listing_id", l.ID)
		return nil
	}
	return actions.AddReviewFlag(tx, *l.CurrentVersionID, reason)
}

// ClearNeedsHumanReviewFlags clears review flags on the case target's
// versions after the case resolves. Abuse flags always clear;
// escalation/appeal/second-look flags clear only when no other open case for
// the same target is still in flight, so parallel cases don't wipe each
// other's state.
func (s *QueueService) ClearNeedsHumanReviewFlags(tx *gorm.DB, c *models.Case) error {
	if c.ListingID == nil {
		return nil
	}

	versionIDs := tx.Model(&models.ListingVersion{}).Select("id").
		Where("listing_id = ?", *c.ListingID)

	if err := tx.Model(&models.VersionReviewFlag{}).
		Where("version_id IN (?) AND reason = ? AND cleared_at IS NULL", versionIDs, models.ReviewFlagAbuse).
		Update("cleared_at", gorm.Expr("NOW()")).Error; err != nil {
		return err
	}

	others, err := s.cases.OtherOpenCases(c.TargetRef, c.ID)
	if err != nil {
		return err
	}
	for i := range others {
		if others[i].ResolvableLocally || others[i].FromQueue != "" {
			return nil
		}
	}

	return tx.Model(&models.VersionReviewFlag{}).
		Where("version_id IN (?) AND reason IN ? AND cleared_at IS NULL", versionIDs,
			[]string{models.ReviewFlagEscalation, models.ReviewFlagAppeal, models.ReviewFlagSecondLook}).
		Update("cleared_at", gorm.Expr("NOW()")).Error
}
