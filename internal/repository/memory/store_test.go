package memory

import (
	"context"
	"errors"
	"testing"

	"governance/internal/model"
	"governance/internal/repository"
	"governance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	store       *Store
	tx          *TxManager
	compliances repository.ComplianceRepository
	approvals   repository.ApprovalRepository
}

func (s *StoreSuite) SetupTest() {
	s.store = NewStore()
	s.tx = NewTxManager(s.store)
	s.compliances = NewComplianceRepository(s.store)
	s.approvals = NewApprovalRepository(s.store)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) newCompliance(identifier string) *model.Compliance {
	return &model.Compliance{
		Identifier:     identifier,
		Version:        "1.0",
		Status:         model.StatusUnderReview,
		ActiveInactive: model.StateInactive,
		PolicyID:       uuid.New(),
	}
}

func (s *StoreSuite) TestRunInTx() {
	ctx := context.Background()

	s.Run("failed transaction leaves no writes behind", func() {
		boom := errors.New("boom")
		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			s.Require().NoError(s.compliances.Create(txCtx, s.newCompliance("COMP-A")))
			s.Require().NoError(s.approvals.Create(txCtx, &model.ApprovalRequest{Identifier: "COMP-A", Version: "u1"}))
			return boom
		})
		s.Require().Error(err)
		s.True(apperror.Is(err, apperror.CodeStorage))

		exists, err := s.compliances.IdentifierExists(ctx, "COMP-A")
		s.Require().NoError(err)
		s.False(exists)
		versions, err := s.approvals.ListVersions(ctx, "COMP-A")
		s.Require().NoError(err)
		s.Empty(versions)
	})

	s.Run("classified errors pass through unchanged", func() {
		err := s.tx.RunInTx(ctx, func(context.Context) error {
			return apperror.Conflict("already decided")
		})
		s.True(apperror.Is(err, apperror.CodeConflict))
	})

	s.Run("nested call joins the outer transaction", func() {
		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			s.Require().NoError(s.compliances.Create(txCtx, s.newCompliance("COMP-B")))
			return s.tx.RunInTx(txCtx, func(inner context.Context) error {
				return s.compliances.Create(inner, s.newCompliance("COMP-C"))
			})
		})
		s.Require().NoError(err)

		for _, identifier := range []string{"COMP-B", "COMP-C"} {
			exists, err := s.compliances.IdentifierExists(ctx, identifier)
			s.Require().NoError(err)
			s.True(exists, identifier)
		}
	})

	s.Run("lock outside a transaction is refused", func() {
		s.Error(s.tx.LockKey(ctx, "COMP-A"))
		s.NoError(s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			return s.tx.LockKey(txCtx, "COMP-A")
		}))
	})
}

func (s *StoreSuite) TestComplianceLookups() {
	ctx := context.Background()

	first := s.newCompliance("COMP-X")
	s.Require().NoError(s.compliances.Create(ctx, first))
	s.NotEqual(uuid.Nil, first.ID)
	s.False(first.CreatedAt.IsZero())

	second := s.newCompliance("COMP-X")
	second.Version = "1.1"
	second.PreviousVersionID = &first.ID
	s.Require().NoError(s.compliances.Create(ctx, second))

	s.Run("latest by status is the newest insert", func() {
		got, err := s.compliances.FindLatestByStatus(ctx, "COMP-X", model.StatusUnderReview)
		s.Require().NoError(err)
		s.Equal(second.ID, got.ID)

		_, err = s.compliances.FindLatestByStatus(ctx, "COMP-X", model.StatusRejected)
		s.ErrorIs(err, repository.ErrNotFound)
	})

	s.Run("returned rows are copies", func() {
		got, err := s.compliances.FindByID(ctx, first.ID)
		s.Require().NoError(err)
		got.Status = model.StatusApproved

		again, err := s.compliances.FindByID(ctx, first.ID)
		s.Require().NoError(err)
		s.Equal(model.StatusUnderReview, again.Status)
	})

	s.Run("list filters and pages", func() {
		other := s.newCompliance("COMP-Y")
		s.Require().NoError(s.compliances.Create(ctx, other))

		items, total, err := s.compliances.List(ctx, repository.ComplianceFilter{Identifier: "COMP-X"}, 1, 1)
		s.Require().NoError(err)
		s.EqualValues(2, total)
		s.Require().Len(items, 1)
		s.Equal(second.ID, items[0].ID)

		items, _, err = s.compliances.List(ctx, repository.ComplianceFilter{Identifier: "COMP-X"}, 3, 1)
		s.Require().NoError(err)
		s.Empty(items)
	})

	s.Run("update of unknown row misses", func() {
		ghost := s.newCompliance("COMP-Z")
		ghost.ID = uuid.New()
		s.ErrorIs(s.compliances.Update(ctx, ghost), repository.ErrNotFound)
	})
}

func (s *StoreSuite) TestReviewerInbox() {
	ctx := context.Background()
	reviewer := uuid.New()

	s.Require().NoError(s.approvals.Create(ctx, &model.ApprovalRequest{Identifier: "COMP-A", Version: "u1", ReviewerID: reviewer, ApprovedNot: model.BoolPtr(true)}))
	s.Require().NoError(s.approvals.Create(ctx, &model.ApprovalRequest{Identifier: "COMP-A", Version: "u2", ReviewerID: reviewer}))
	s.Require().NoError(s.approvals.Create(ctx, &model.ApprovalRequest{Identifier: "COMP-B", Version: "u1", ReviewerID: uuid.New()}))

	pending, total, err := s.approvals.ListByReviewer(ctx, reviewer, true, 1, 10)
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Equal("u2", pending[0].Version)

	all, total, err := s.approvals.ListByReviewer(ctx, reviewer, false, 1, 10)
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Equal("u2", all[0].Version)
}

func (s *StoreSuite) TestDuplicateUser() {
	ctx := context.Background()
	users := NewUserRepository(s.store)

	s.Require().NoError(users.Create(ctx, &model.User{Username: "rita", Email: "rita@example.com"}))
	err := users.Create(ctx, &model.User{Username: "rita", Email: "other@example.com"})
	s.ErrorIs(err, repository.ErrDuplicate)
}
