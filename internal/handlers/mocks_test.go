package handlers_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
)

// --- Mock SessionService ---
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) ListSessions(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionService) ScheduleSessions(ctx context.Context, req dto.ScheduleSessionRequest) ([]domain.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionService) CancelSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) CompleteSession(ctx context.Context, sessionID string, req dto.CompleteSessionRequest) (*domain.CompletionResult, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletionResult), args.Error(1)
}

func (m *MockSessionService) DeleteSession(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

var _ portssvc.SessionSchedulerSvc = (*MockSessionService)(nil)

// --- Mock BillingService ---
type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) ChargeForSession(ctx context.Context, sessionID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockBillingService) RecordPayment(ctx context.Context, clientID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, clientID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockBillingService) DeleteTransaction(ctx context.Context, transactionID string) error {
	return m.Called(ctx, transactionID).Error(0)
}

func (m *MockBillingService) ListClientTransactions(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, clientID, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return txns, next, args.Error(2)
}

func (m *MockBillingService) RecordExpense(ctx context.Context, amount decimal.Decimal, description, category string) (*domain.Expense, error) {
	args := m.Called(ctx, amount, description, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockBillingService) DeleteExpense(ctx context.Context, expenseID string) error {
	return m.Called(ctx, expenseID).Error(0)
}

func (m *MockBillingService) ReconcileBalances(ctx context.Context) (*domain.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationReport), args.Error(1)
}

func (m *MockBillingService) ResolveFee(ctx context.Context, tx portsrepo.LedgerStore, session domain.Session) (*decimal.Decimal, error) {
	args := m.Called(ctx, tx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*decimal.Decimal), args.Error(1)
}

func (m *MockBillingService) ChargeSessionInTx(ctx context.Context, tx portsrepo.LedgerStore, session domain.Session) ([]domain.Transaction, error) {
	args := m.Called(ctx, tx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockBillingService) ReverseSessionInTx(ctx context.Context, tx portsrepo.LedgerStore, sessionID string) (int, error) {
	args := m.Called(ctx, tx, sessionID)
	return args.Int(0), args.Error(1)
}

var _ portssvc.BillingLedgerSvc = (*MockBillingService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) GetWindowTotals(ctx context.Context, window domain.ReportWindow) (*domain.WindowTotals, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WindowTotals), args.Error(1)
}

func (m *MockReportingService) GetOutstandingBalance(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReportingService) GetMonthlyIncomeTrend(ctx context.Context, monthsBack int) ([]domain.MonthTotal, error) {
	args := m.Called(ctx, monthsBack)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthTotal), args.Error(1)
}

func (m *MockReportingService) GetSessionDensity(ctx context.Context, daysBack int) ([]domain.DayCount, error) {
	args := m.Called(ctx, daysBack)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DayCount), args.Error(1)
}

func (m *MockReportingService) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

var _ portssvc.ReportingSvc = (*MockReportingService)(nil)

// --- Mock ClientService ---
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*domain.Client, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) ListClients(ctx context.Context, includeArchived bool) ([]domain.Client, error) {
	args := m.Called(ctx, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *MockClientService) UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest) (*domain.Client, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) ArchiveClient(ctx context.Context, clientID string) error {
	return m.Called(ctx, clientID).Error(0)
}

var _ portssvc.ClientSvc = (*MockClientService)(nil)

// --- Mock GroupService ---
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest) (*domain.Group, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupService) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupService) ListGroups(ctx context.Context, includeArchived bool) ([]domain.Group, error) {
	args := m.Called(ctx, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupService) UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest) (*domain.Group, error) {
	args := m.Called(ctx, groupID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

var _ portssvc.GroupSvc = (*MockGroupService)(nil)
