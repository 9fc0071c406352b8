//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"governance/internal/database"
	"governance/internal/model"
	"governance/internal/repository"
	"governance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostgresSuite struct {
	suite.Suite
	container   *tcpostgres.PostgresContainer
	db          *gorm.DB
	tx          repository.TransactionManager
	compliances repository.ComplianceRepository
	approvals   repository.ApprovalRepository
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("governance"),
		tcpostgres.WithUsername("governance"),
		tcpostgres.WithPassword("governance"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := database.NewConnection(dsn, database.PoolConfig{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Minute}, zap.NewNop())
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))
	s.db = db

	s.tx = repository.NewTransactionManager(db, repository.TxOptions{
		Timeout:     5 * time.Second,
		LockTimeout: 300 * time.Millisecond,
		MaxRetries:  3,
	})
	s.compliances = repository.NewComplianceRepository(db)
	s.approvals = repository.NewApprovalRepository(db)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresSuite) newCompliance(identifier string) *model.Compliance {
	c := &model.Compliance{
		Identifier:     identifier,
		Version:        "1.0",
		Status:         model.StatusUnderReview,
		ActiveInactive: model.StateInactive,
		PolicyID:       uuid.New(),
	}
	c.Description = "Quarterly access review"
	return c
}

func (s *PostgresSuite) TestRollbackDiscardsWrites() {
	ctx := context.Background()
	identifier := "COMP-PG-" + uuid.NewString()[:8]

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		s.Require().NoError(s.compliances.Create(txCtx, s.newCompliance(identifier)))
		s.Require().NoError(s.approvals.Create(txCtx, &model.ApprovalRequest{Identifier: identifier, Version: "u1", ReviewerID: uuid.New()}))
		return errors.New("boom")
	})
	s.True(apperror.Is(err, apperror.CodeStorage))

	exists, err := s.compliances.IdentifierExists(ctx, identifier)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *PostgresSuite) TestChainQueries() {
	ctx := context.Background()
	identifier := "COMP-PG-" + uuid.NewString()[:8]

	first := s.newCompliance(identifier)
	s.Require().NoError(s.compliances.Create(ctx, first))
	second := s.newCompliance(identifier)
	second.Version = "1.1"
	second.PreviousVersionID = &first.ID
	s.Require().NoError(s.compliances.Create(ctx, second))

	chain, err := s.compliances.ListByIdentifier(ctx, identifier)
	s.Require().NoError(err)
	s.Require().Len(chain, 2)
	s.Equal(first.ID, chain[0].ID)

	latest, err := s.compliances.FindLatestByStatus(ctx, identifier, model.StatusUnderReview)
	s.Require().NoError(err)
	s.Equal(second.ID, latest.ID)

	_, err = s.compliances.FindByID(ctx, uuid.New())
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresSuite) TestLockKeyTimesOutAsConflict() {
	ctx := context.Background()
	key := "COMP-LOCK-" + uuid.NewString()[:8]

	held := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.tx.LockKey(txCtx, key); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.tx.LockKey(txCtx, key)
	})
	close(release)
	wg.Wait()

	s.Require().Error(err)
	s.True(apperror.Is(err, apperror.CodeConflict), "lock wait past lock_timeout should surface as a conflict")

	s.NoError(s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.tx.LockKey(txCtx, key)
	}), "the lock is released when the holding transaction commits")
}

func (s *PostgresSuite) TestDuplicateUsernameIsConflict() {
	ctx := context.Background()
	users := repository.NewUserRepository(s.db)
	name := "user-" + uuid.NewString()[:8]

	s.Require().NoError(users.Create(ctx, &model.User{Username: name, Email: name + "@example.com", Password: "x", Role: model.RoleStaff}))
	err := users.Create(ctx, &model.User{Username: name, Email: "other-" + name + "@example.com", Password: "x", Role: model.RoleStaff})
	s.Require().Error(err)
	s.True(apperror.Is(repository.Classify(err), apperror.CodeConflict))
}
