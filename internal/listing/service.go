package listing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Service implements the listing query engine and lifecycle.
type Service struct {
	repo    Repository
	sellers SellerDirectory
	tracer  trace.Tracer
	now     func() time.Time
}

// NewService creates a new listing service.
func NewService(repo Repository, sellers SellerDirectory) *Service {
	return &Service{
		repo:    repo,
		sellers: sellers,
		tracer:  otel.Tracer("bookmarket/listing"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "listing."+name, trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create stores a new available listing owned by sellerID.
func (s *Service) Create(ctx context.Context, sellerID string, d Draft) (l Listing, err error) {
	ctx, span := s.start(ctx, "Create", attribute.String("seller.id", sellerID))
	defer func() { end(span, err) }()

	now := s.now()
	l = Listing{
		Title:       d.Title,
		Author:      d.Author,
		Genre:       d.Genre,
		Condition:   d.Condition,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		SellerID:    sellerID,
		Status:      StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d.Price != nil {
		l.Price = *d.Price
	}
	if l.ImageURL == "" {
		l.ImageURL = DefaultImageURL
	}
	if err := s.repo.Create(ctx, &l); err != nil {
		return Listing{}, fmt.Errorf("create listing: %w", err)
	}
	span.SetAttributes(attribute.String("listing.id", l.ID))
	return l, nil
}

// Get returns the detail view of a listing and counts the view.
func (s *Service) Get(ctx context.Context, id string) (sum Summary, err error) {
	ctx, span := s.start(ctx, "Get", attribute.String("listing.id", id))
	defer func() { end(span, err) }()

	l, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	out, err := s.summarize(ctx, []Scored{{Listing: l}}, false)
	if err != nil {
		return Summary{}, err
	}
	return out[0], nil
}

// List runs a query over available listings.
func (s *Service) List(ctx context.Context, q Query) (items []Summary, page Pagination, err error) {
	ctx, span := s.start(ctx, "List",
		attribute.Int("page", q.Page.Page),
		attribute.Int("limit", q.Page.Limit),
		attribute.Bool("search", q.Filter.Search != ""),
	)
	defer func() { end(span, err) }()

	if q.Filter.Empty() {
		_, page = Paginate([]Scored{}, q.Page)
		return []Summary{}, page, nil
	}
	found, err := s.repo.Find(ctx, q.Filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("find listings: %w", err)
	}
	ranked, page := Run(found, q)
	items, err = s.summarize(ctx, ranked, q.Sort.ByScore)
	if err != nil {
		return nil, Pagination{}, err
	}
	span.SetAttributes(attribute.Int("result.count", len(items)), attribute.Int("result.total", page.TotalBooks))
	return items, page, nil
}

// ListBySeller returns every listing of a seller in any status, newest first.
func (s *Service) ListBySeller(ctx context.Context, sellerID string) (items []Listing, err error) {
	ctx, span := s.start(ctx, "ListBySeller", attribute.String("seller.id", sellerID))
	defer func() { end(span, err) }()

	found, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller listings: %w", err)
	}
	scored := make([]Scored, len(found))
	for i, l := range found {
		scored[i] = Scored{Listing: l}
	}
	Order(scored, DefaultSort)
	items = make([]Listing, len(scored))
	for i, sc := range scored {
		items[i] = sc.Listing
	}
	return items, nil
}

// Update applies a validated patch on behalf of callerID.
func (s *Service) Update(ctx context.Context, callerID, id string, p Patch) (l Listing, err error) {
	ctx, span := s.start(ctx, "Update", attribute.String("listing.id", id))
	defer func() { end(span, err) }()

	current, err := s.owned(ctx, callerID, id)
	if err != nil {
		return Listing{}, err
	}
	if p.Empty() {
		return current, nil
	}
	return s.repo.Update(ctx, id, p)
}

// SetStatus moves a listing to st on behalf of callerID. Any transition is
// allowed.
func (s *Service) SetStatus(ctx context.Context, callerID, id string, st Status) (l Listing, err error) {
	ctx, span := s.start(ctx, "SetStatus", attribute.String("listing.id", id), attribute.String("status", string(st)))
	defer func() { end(span, err) }()

	if _, err := s.owned(ctx, callerID, id); err != nil {
		return Listing{}, err
	}
	return s.repo.Update(ctx, id, Patch{Status: &st})
}

// Delete removes a listing on behalf of callerID.
func (s *Service) Delete(ctx context.Context, callerID, id string) (err error) {
	ctx, span := s.start(ctx, "Delete", attribute.String("listing.id", id))
	defer func() { end(span, err) }()

	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// CountByStatus returns the per-status listing counts of a seller.
func (s *Service) CountByStatus(ctx context.Context, sellerID string) (StatusCounts, error) {
	return s.repo.CountByStatus(ctx, sellerID)
}

// Stats returns marketplace-wide listing statistics.
func (s *Service) Stats(ctx context.Context, topGenres int) (Stats, error) {
	return s.repo.Stats(ctx, topGenres)
}

func (s *Service) owned(ctx context.Context, callerID, id string) (Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if callerID == "" || l.SellerID != callerID {
		return Listing{}, ErrForbidden
	}
	return l, nil
}

func (s *Service) summarize(ctx context.Context, items []Scored, withScore bool) ([]Summary, error) {
	out := make([]Summary, len(items))
	if len(items) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, it := range items {
		if !seen[it.Listing.SellerID] {
			seen[it.Listing.SellerID] = true
			ids = append(ids, it.Listing.SellerID)
		}
	}
	sellers, err := s.sellers.Sellers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve sellers: %w", err)
	}
	for i, it := range items {
		sum := Summary{Listing: it.Listing}
		if seller, ok := sellers[it.Listing.SellerID]; ok {
			sum.SellerName = seller.Name
			sum.SellerEmail = seller.Email
			sum.SellerPhone = seller.Phone
			sum.SellerLocation = seller.Location
		}
		if withScore {
			score := it.Score
			sum.Score = &score
		}
		out[i] = sum
	}
	return out, nil
}
