package festival

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sosohaeng-api/internal/api"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/poi"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const (
	DefaultRadiusKm = 10.0
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*size far from overflow.
	MaxPage    = 10000
	dateLayout = "2006-01-02"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	List(ctx context.Context, filter types.FestivalFilter) (*types.Page[types.FestivalListItem], error)
	Get(ctx context.Context, id uuid.UUID) (*types.Festival, error)
	Create(ctx context.Context, req types.CreateFestivalRequest) (*types.Festival, error)
	Update(ctx context.Context, id uuid.UUID, req types.UpdateFestivalRequest) (*types.Festival, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceImpl struct {
	logger             *slog.Logger
	festivalRepository Repository
}

func NewServiceImpl(festivalRepository Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:             logger,
		festivalRepository: festivalRepository,
	}
}

// normalizeFilter applies paging defaults and picks distance ordering when a
// location is given and no order was requested.
func normalizeFilter(f types.FestivalFilter) (types.FestivalFilter, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		return f, fmt.Errorf("%w: page must be at most %d", types.ErrInvalidInput, MaxPage)
	}
	if f.Size < 1 {
		f.Size = DefaultPageSize
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}
	if f.RadiusKm <= 0 {
		f.RadiusKm = DefaultRadiusKm
	}
	f.Query = strings.TrimSpace(f.Query)

	hasLocation := f.Lat != nil && f.Lon != nil
	switch f.OrderBy {
	case "":
		f.OrderBy = types.FestivalOrderTitle
		if hasLocation {
			f.OrderBy = types.FestivalOrderDistance
		}
	case types.FestivalOrderDistance:
		if !hasLocation {
			return f, fmt.Errorf("%w: order_by=distance requires lat and lon", types.ErrInvalidInput)
		}
	case types.FestivalOrderTitle:
	default:
		return f, fmt.Errorf("%w: order_by must be distance or title", types.ErrInvalidInput)
	}
	return f, nil
}

func (s *ServiceImpl) List(ctx context.Context, filter types.FestivalFilter) (*types.Page[types.FestivalListItem], error) {
	ctx, span := otel.Tracer("FestivalService").Start(ctx, "List", trace.WithAttributes(
		attribute.String("order_by", filter.OrderBy),
		attribute.Int("page", filter.Page),
		attribute.Int("size", filter.Size),
	))
	defer span.End()

	f, err := normalizeFilter(filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if f.OrderBy == types.FestivalOrderTitle {
		festivals, total, err := s.festivalRepository.ListByTitle(ctx, f.Query, f.Size, (f.Page-1)*f.Size)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to list festivals", slog.Any("error", err))
			span.RecordError(err)
			return nil, err
		}
		items := make([]types.FestivalListItem, len(festivals))
		for i, fest := range festivals {
			items[i] = types.FestivalListItem{Festival: fest}
		}
		span.SetStatus(codes.Ok, "Festivals listed by title")
		return &types.Page[types.FestivalListItem]{Items: items, Total: total, Page: f.Page, Size: f.Size}, nil
	}

	origin := types.GeoPoint{Lat: *f.Lat, Lon: *f.Lon}
	festivals, err := s.festivalRepository.ListWithCoordinates(ctx, f.Query, poi.NewBoundingBox(origin.Lat, origin.Lon, f.RadiusKm))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list festivals near location", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	ranked := poi.RankBy(origin, festivals, types.Festival.Coordinates, &f.RadiusKm)
	total := len(ranked)
	start := min((f.Page-1)*f.Size, total)
	end := min(start+f.Size, total)

	items := make([]types.FestivalListItem, 0, end-start)
	for _, r := range ranked[start:end] {
		d := api.RoundKm(r.DistanceKm)
		items = append(items, types.FestivalListItem{Festival: r.Item, Distance: &d})
	}

	span.SetAttributes(attribute.Int("festival.total", total))
	span.SetStatus(codes.Ok, "Festivals listed by distance")
	return &types.Page[types.FestivalListItem]{Items: items, Total: total, Page: f.Page, Size: f.Size}, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (*types.Festival, error) {
	return s.festivalRepository.Get(ctx, id)
}

func (s *ServiceImpl) Create(ctx context.Context, req types.CreateFestivalRequest) (*types.Festival, error) {
	start, err := parseDate(req.EventStartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EventEndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: event_end_date is before event_start_date", types.ErrInvalidInput)
	}

	created, err := s.festivalRepository.Create(ctx, types.Festival{
		ContentID:      req.ContentID,
		Title:          strings.TrimSpace(req.Title),
		Location:       req.Location,
		Description:    req.Description,
		EventStartDate: start,
		EventEndDate:   end,
		MapX:           req.MapX,
		MapY:           req.MapY,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create festival", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Festival created", slog.String("festival_id", created.ID.String()))
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, req types.UpdateFestivalRequest) (*types.Festival, error) {
	start, err := parseDate(req.EventStartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EventEndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: event_end_date is before event_start_date", types.ErrInvalidInput)
	}

	return s.festivalRepository.Update(ctx, id, Patch{
		Title:          req.Title,
		Location:       req.Location,
		Description:    req.Description,
		EventStartDate: start,
		EventEndDate:   end,
		MapX:           req.MapX,
		MapY:           req.MapY,
		ImageURL:       req.ImageURL,
	})
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.festivalRepository.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Festival deleted", slog.String("festival_id", id.String()))
	return nil
}

func parseDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", types.ErrInvalidInput, *v)
	}
	return &t, nil
}
