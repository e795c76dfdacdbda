package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	"github.com/SscSPs/practice_ledger_app/internal/core/ports"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
)

// clientService implements the ClientSvc interface
type clientService struct {
	BaseService
	clientRepo portsrepo.ClientRepository
	clock      ports.Clock
	ids        ports.IDGenerator
}

// NewClientService creates a new client service.
func NewClientService(clientRepo portsrepo.ClientRepository, clock ports.Clock, ids ports.IDGenerator) portssvc.ClientSvc {
	return &clientService{
		clientRepo: clientRepo,
		clock:      clock,
		ids:        ids,
	}
}

// Ensure clientService implements the ClientSvc interface
var _ portssvc.ClientSvc = (*clientService)(nil)

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*domain.Client, error) {
	client := domain.Client{
		ClientID:    s.ids.NewID(),
		Name:        strings.TrimSpace(req.Name),
		Phone:       req.Phone,
		Email:       req.Email,
		Notes:       req.Notes,
		DefaultFee:  req.DefaultFee,
		Balance:     decimal.Zero,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(s.clock.Now()),
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.SaveClient(ctx, client); err != nil {
		s.LogError(ctx, err, "Failed to save client")
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	s.LogInfo(ctx, "Client created", slog.String("client_id", client.ClientID))
	return &client, nil
}

func (s *clientService) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find client", slog.String("client_id", clientID))
		}
		return nil, err
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, includeArchived bool) ([]domain.Client, error) {
	clients, err := s.clientRepo.ListClients(ctx, includeArchived)
	if err != nil {
		s.LogError(ctx, err, "Failed to list clients")
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	if clients == nil {
		return []domain.Client{}, nil
	}
	return clients, nil
}

// UpdateClient applies profile edits. The balance is owned by the ledger and never changes here.
func (s *clientService) UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest) (*domain.Client, error) {
	return s.applyProfile(ctx, clientID, req.ToClientProfile())
}

func (s *clientService) ArchiveClient(ctx context.Context, clientID string) error {
	inactive := false
	_, err := s.applyProfile(ctx, clientID, domain.ClientProfile{IsActive: &inactive})
	return err
}

func (s *clientService) applyProfile(ctx context.Context, clientID string, profile domain.ClientProfile) (*domain.Client, error) {
	client, err := s.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !profile.Apply(client) {
		return client, nil
	}
	client.Name = strings.TrimSpace(client.Name)
	client.LastUpdatedAt = s.clock.Now()
	if err := client.Validate(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.UpdateClientProfile(ctx, *client); err != nil {
		s.LogError(ctx, err, "Failed to update client", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to update client %s: %w", clientID, err)
	}

	s.LogInfo(ctx, "Client updated",
		slog.String("client_id", clientID),
		slog.Bool("is_active", client.IsActive))
	return client, nil
}
