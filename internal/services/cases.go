package services

import (
	"errors"
	"fmt"

	"github.com/craftbazaar/moderation-engine/internal/actions"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxChainLength bounds override-chain walks. Chains are expected to stay
// well under ten; the cap guards against data corruption introducing cycles.
const maxChainLength = 50

// CaseService tracks units of moderation work and walks decision chains.
type CaseService struct {
	db *gorm.DB
}

func NewCaseService(db *gorm.DB) *CaseService {
	return &CaseService{db: db}
}

func (s *CaseService) Get(id uuid.UUID) (*models.Case, error) {
	var c models.Case
	if err := s.db.Preload("Reports").Preload("Reports.Reporter").Preload("Decisions").
		First(&c, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, id)
	}
	return &c, nil
}

func (s *CaseService) GetByCinderJobID(jobID string) (*models.Case, error) {
	var c models.Case
	if err := s.db.Preload("Reports").Preload("Decisions").
		First(&c, "cinder_job_id = ?", jobID).Error; err != nil {
		return nil, fmt.Errorf("%w: cinder job %s", ErrCaseNotFound, jobID)
	}
	return &c, nil
}

func targetScope(ref models.TargetRef) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case ref.ListingID != nil:
			return db.Where("listing_id = ?", *ref.ListingID)
		case ref.AccountID != nil:
			return db.Where("account_id = ?", *ref.AccountID)
		case ref.RatingID != nil:
			return db.Where("rating_id = ?", *ref.RatingID)
		case ref.CollectionID != nil:
			return db.Where("collection_id = ?", *ref.CollectionID)
		}
		return db
	}
}

// GetOrCreateForTarget attaches work to the target's open case, creating one
// lazily when none exists.
func (s *CaseService) GetOrCreateForTarget(ref models.TargetRef) (*models.Case, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("%w: target reference must have exactly one variant", ErrConfig)
	}
	var open []models.Case
	err := s.db.Scopes(targetScope(ref)).
		Where("NOT EXISTS (SELECT 1 FROM decisions WHERE decisions.case_id = cases.id)").
		Order("created_at ASC").Limit(1).Find(&open).Error
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return &open[0], nil
	}
	c := models.Case{ID: uuid.New(), TargetRef: ref}
	if err := s.db.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// OtherOpenCases returns open cases for the same target, excluding caseID.
func (s *CaseService) OtherOpenCases(ref models.TargetRef, caseID uuid.UUID) ([]models.Case, error) {
	var cases []models.Case
	err := s.db.Scopes(targetScope(ref)).
		Where("id <> ?", caseID).
		Where("NOT EXISTS (SELECT 1 FROM decisions WHERE decisions.case_id = cases.id)").
		Find(&cases).Error
	return cases, err
}

// CurrentDecision returns the most recent decision recorded for a case, or
// nil when the case is still open.
func (s *CaseService) CurrentDecision(c *models.Case) (*models.Decision, error) {
	var ds []models.Decision
	err := s.db.Where("case_id = ?", c.ID).Order("created_at DESC").Limit(1).Find(&ds).Error
	if err != nil || len(ds) == 0 {
		return nil, err
	}
	return &ds[0], nil
}

// FinalDecision walks the override chain from the case's current decision to
// the decision at the end of the chain: back to the root first, then forward
// override by override.
func (s *CaseService) FinalDecision(c *models.Case) (*models.Decision, error) {
	d, err := s.CurrentDecision(c)
	if err != nil || d == nil {
		return nil, err
	}
	for i := 0; i < maxChainLength; i++ {
		if d.OverrideOfID == nil {
			break
		}
		var parent models.Decision
		if err := s.db.First(&parent, "id = ?", *d.OverrideOfID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		d = &parent
	}
	for i := 0; i < maxChainLength; i++ {
		var next []models.Decision
		if err := s.db.Where("override_of_id = ?", d.ID).
			Order("created_at DESC").Limit(1).Find(&next).Error; err != nil {
			return nil, err
		}
		if len(next) == 0 {
			break
		}
		d = &next[0]
	}
	return d, nil
}

// ChainExecuted reports whether the decision or any of its override
// ancestors was actually executed.
func (s *CaseService) ChainExecuted(d *models.Decision) (bool, error) {
	cur := d
	for i := 0; i < maxChainLength; i++ {
		if cur.Executed() {
			return true, nil
		}
		if cur.OverrideOfID == nil {
			return false, nil
		}
		var parent models.Decision
		if err := s.db.First(&parent, "id = ?", *cur.OverrideOfID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		cur = &parent
	}
	return false, nil
}

// SyncedAncestor walks the override chain upward and returns the nearest
// decision carrying an external id, the decision itself included.
func (s *CaseService) SyncedAncestor(d *models.Decision) (*models.Decision, error) {
	cur := d
	for i := 0; i < maxChainLength; i++ {
		if cur.Synced() {
			return cur, nil
		}
		if cur.OverrideOfID == nil {
			return nil, nil
		}
		var parent models.Decision
		if err := s.db.First(&parent, "id = ?", *cur.OverrideOfID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		cur = &parent
	}
	return nil, nil
}

// Superseded reports whether a later decision overrides d.
func (s *CaseService) Superseded(d *models.Decision) (bool, error) {
	var count int64
	err := s.db.Model(&models.Decision{}).
		Where("override_of_id = ?", d.ID).Count(&count).Error
	return count > 0, err
}

// ResolveInputFor assembles the handler resolver's three action inputs from
// a decision's chain pointers.
func (s *CaseService) ResolveInputFor(d *models.Decision) (actions.ResolveInput, error) {
	in := actions.ResolveInput{New: d.Action}

	if d.OverrideOfID != nil {
		var overridden models.Decision
		if err := s.db.First(&overridden, "id = ?", *d.OverrideOfID).Error; err != nil {
			return in, fmt.Errorf("%w: override of %s", ErrDecisionNotFound, *d.OverrideOfID)
		}
		in.Overridden = &overridden.Action
		executed, err := s.ChainExecuted(&overridden)
		if err != nil {
			return in, err
		}
		in.OverriddenExecuted = executed
	}

	if d.CaseID != nil {
		appealed, err := s.AppealedDecision(*d.CaseID)
		if err != nil {
			return in, err
		}
		if appealed != nil {
			in.Appealed = &appealed.Action
		}
	}
	return in, nil
}

// AppealedDecision returns the decision whose appeal opened this case, or
// nil when the case is not an appeal case.
func (s *CaseService) AppealedDecision(caseID uuid.UUID) (*models.Decision, error) {
	var ds []models.Decision
	err := s.db.Where("appeal_case_id = ?", caseID).Limit(1).Find(&ds).Error
	if err != nil || len(ds) == 0 {
		return nil, err
	}
	return &ds[0], nil
}
