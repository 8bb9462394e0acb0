package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dhoini/Loyalty-microservice/internal/cpf"
	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
)

// Максимальное количество результатов поиска по имени
const maxSearchResults = 10

// ClientService интерфейс сервиса для работы с клиентами
type ClientService interface {
	Register(ctx context.Context, req domain.ClientRequest) (domain.Client, error)
	GetAll(ctx context.Context) ([]domain.Client, error)
	Lookup(ctx context.Context, identifier string) (domain.Client, error)
	UpdateProfile(ctx context.Context, identifier string, req domain.ClientUpdateRequest) (domain.Client, error)
	SearchByName(ctx context.Context, term string) ([]domain.Client, error)
}

type clientService struct {
	repo repository.ClientRepository
	log  *logger.Logger
}

// NewClientService создает новый сервис для работы с клиентами
func NewClientService(repo repository.ClientRepository, log *logger.Logger) ClientService {
	return &clientService{
		repo: repo,
		log:  log,
	}
}

// Register регистрирует нового клиента.
// CPF нормализуется и хранится в формате 000.000.000-00, баланс
// штампов начинается с нуля.
func (s *clientService) Register(ctx context.Context, req domain.ClientRequest) (domain.Client, error) {
	s.log.Debug("Registering client with CPF: %s", req.CPF)

	if !cpf.IsValid(req.CPF) {
		s.log.Warn("Invalid CPF format: %s", req.CPF)
		return domain.Client{}, fmt.Errorf("%w: cpf must contain exactly 11 digits", repository.ErrInvalidData)
	}

	client := domain.Client{
		CPF:           cpf.Format(req.CPF),
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		BirthDate:     req.BirthDate,
		CurrentStamps: 0,
	}

	return s.repo.Create(ctx, client)
}

// GetAll возвращает всех клиентов
func (s *clientService) GetAll(ctx context.Context) ([]domain.Client, error) {
	s.log.Debug("Getting all clients")
	return s.repo.GetAll(ctx)
}

// Lookup находит клиента по идентификатору.
// Сначала идентификатор пробуется как есть, затем, если он содержит
// 11 цифр, в каноническом формате 000.000.000-00.
func (s *clientService) Lookup(ctx context.Context, identifier string) (domain.Client, error) {
	s.log.Debug("Looking up client: %s", identifier)

	client, err := s.repo.GetByCPF(ctx, identifier)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Client{}, err
	}

	formatted := cpf.Format(identifier)
	if formatted == identifier {
		return domain.Client{}, repository.ErrNotFound
	}

	return s.repo.GetByCPF(ctx, formatted)
}

// UpdateProfile изменяет профиль клиента: телефон, email и дату
// рождения. CPF и баланс штампов через эту операцию не меняются.
func (s *clientService) UpdateProfile(ctx context.Context, identifier string, req domain.ClientUpdateRequest) (domain.Client, error) {
	s.log.Debug("Updating profile for client: %s", identifier)

	existing, err := s.Lookup(ctx, identifier)
	if err != nil {
		return domain.Client{}, err
	}

	if req.Phone != "" {
		existing.Phone = req.Phone
	}
	if req.Email != "" {
		existing.Email = req.Email
	}
	if req.BirthDate != "" {
		existing.BirthDate = req.BirthDate
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return domain.Client{}, err
	}

	return existing, nil
}

// SearchByName ищет клиентов по подстроке имени без учета регистра
func (s *clientService) SearchByName(ctx context.Context, term string) ([]domain.Client, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Client{}, nil
	}

	clients, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	matches := make([]domain.Client, 0, maxSearchResults)
	for _, client := range clients {
		if strings.Contains(strings.ToLower(client.Name), needle) {
			matches = append(matches, client)
			if len(matches) == maxSearchResults {
				break
			}
		}
	}

	return matches, nil
}
