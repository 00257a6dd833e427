package rockets

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/Domenick1991/astrobookings/internal/repository"
)

type RocketUseCase interface {
	CreateRocket(ctx context.Context, input CreateRocketInput) domain.Result[domain.Rocket]
	ListRockets(ctx context.Context) domain.Result[[]domain.Rocket]
	GetRocket(ctx context.Context, id string) domain.Result[domain.Rocket]
}

type CreateRocketInput struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Speed    *int   `json:"speed"`
	Range    string `json:"range"`
}

type RocketService struct {
	repo   repository.RocketRepository
	logger *slog.Logger
}

func NewRocketService(repo repository.RocketRepository, logger *slog.Logger) *RocketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RocketService{repo: repo, logger: logger}
}

func (s *RocketService) CreateRocket(ctx context.Context, input CreateRocketInput) domain.Result[domain.Rocket] {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.ValidationFailed[domain.Rocket]("name is required")
	}
	if input.Capacity < domain.MinRocketCapacity || input.Capacity > domain.MaxRocketCapacity {
		return domain.ValidationFailed[domain.Rocket]("capacity must be > 0 and <= 10")
	}
	if input.Speed != nil && *input.Speed <= 0 {
		return domain.ValidationFailed[domain.Rocket]("speed must be > 0")
	}

	rocketRange := domain.RocketRangeLEO
	if strings.TrimSpace(input.Range) != "" {
		parsed, err := domain.ParseRocketRange(input.Range)
		if err != nil {
			return domain.ValidationFailed[domain.Rocket]("range must be one of: LEO, MOON, MARS")
		}
		rocketRange = parsed
	}

	rocket, err := s.repo.Add(ctx, domain.Rocket{
		Name:     name,
		Capacity: input.Capacity,
		Speed:    input.Speed,
		Range:    rocketRange,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "save rocket", "name", name, "error", err)
		return domain.UnexpectedFailure[domain.Rocket]("failed to save rocket")
	}

	s.logger.InfoContext(ctx, "rocket created", "rocket_id", rocket.ID, "capacity", rocket.Capacity, "range", rocket.Range)
	return domain.Success(rocket)
}

func (s *RocketService) ListRockets(ctx context.Context) domain.Result[[]domain.Rocket] {
	rockets, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list rockets", "error", err)
		return domain.UnexpectedFailure[[]domain.Rocket]("failed to list rockets")
	}
	return domain.Success(rockets)
}

func (s *RocketService) GetRocket(ctx context.Context, id string) domain.Result[domain.Rocket] {
	if strings.TrimSpace(id) == "" {
		return domain.NotFound[domain.Rocket]()
	}
	rocket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFound[domain.Rocket]()
		}
		s.logger.ErrorContext(ctx, "load rocket", "rocket_id", id, "error", err)
		return domain.UnexpectedFailure[domain.Rocket]("failed to load rocket")
	}
	return domain.Success(rocket)
}

var _ RocketUseCase = (*RocketService)(nil)
