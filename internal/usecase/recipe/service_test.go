package recipe_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipebox/internal/common/pagination"
	"recipebox/internal/domain/entity"
	"recipebox/internal/repository"
	recUC "recipebox/internal/usecase/recipe"
	"recipebox/tests/fixtures"
)

// Minimal in-memory RecipeRepository
type stubRepo struct {
	data   map[int64]*entity.Recipe
	nextID int64
	err    error // set to force errors
}

func newStub() *stubRepo {
	return &stubRepo{data: map[int64]*entity.Recipe{}, nextID: 1}
}

func (s *stubRepo) Create(_ context.Context, r *entity.Recipe) error {
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.data {
		if existing.SourceURL == r.SourceURL {
			return entity.ErrAlreadyExists
		}
	}
	r.ID = s.nextID
	s.nextID++
	s.data[r.ID] = r
	return nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (*entity.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.data[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return r, nil
}

func (s *stubRepo) GetBySourceURL(_ context.Context, url string) (*entity.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.data {
		if r.SourceURL == url {
			return r, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (s *stubRepo) ListPaginated(_ context.Context, offset, limit int) ([]*entity.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*entity.Recipe, 0, len(s.data))
	for _, r := range s.data {
		out = append(out, r)
	}
	if offset >= len(out) {
		return []*entity.Recipe{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (s *stubRepo) Count(_ context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.data)), nil
}

func (s *stubRepo) Search(_ context.Context, keywords []string, _ repository.RecipeSearchFilters) ([]*entity.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	// The stub does not filter; all recipes are returned
	out := make([]*entity.Recipe, 0, len(s.data))
	for _, r := range s.data {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.data[id]; !ok {
		return entity.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *stubRepo) ListUnverifiedSince(_ context.Context, _ time.Time, _ int) ([]*entity.Recipe, error) {
	return nil, s.err
}

func (s *stubRepo) MarkLinkHealth(_ context.Context, _ int64, _ bool, _ time.Time) error {
	return s.err
}

/* ───────── Get ───────── */

func TestService_Get(t *testing.T) {
	repo := newStub()
	want := fixtures.NewTestRecipe()
	want.ID = 0
	if err := repo.Create(context.Background(), want); err != nil {
		t.Fatal(err)
	}

	svc := &recUC.Service{Repo: repo}
	got, err := svc.Get(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got.Title != want.Title {
		t.Fatalf("title mismatch: %q", got.Title)
	}
}

func TestService_Get_InvalidID(t *testing.T) {
	svc := &recUC.Service{Repo: newStub()}
	for _, id := range []int64{0, -1} {
		if _, err := svc.Get(context.Background(), id); !errors.Is(err, recUC.ErrInvalidRecipeID) {
			t.Fatalf("id=%d: want ErrInvalidRecipeID, got %v", id, err)
		}
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc := &recUC.Service{Repo: newStub()}
	if _, err := svc.Get(context.Background(), 42); !errors.Is(err, recUC.ErrRecipeNotFound) {
		t.Fatalf("want ErrRecipeNotFound, got %v", err)
	}
}

func TestService_Get_RepoError(t *testing.T) {
	repo := newStub()
	repo.err = errors.New("db down")
	svc := &recUC.Service{Repo: repo}
	if _, err := svc.Get(context.Background(), 1); err == nil {
		t.Fatal("want error, got nil")
	}
}

/* ───────── ListPaginated ───────── */

func TestService_ListPaginated(t *testing.T) {
	repo := newStub()
	for i := 0; i < 5; i++ {
		r := fixtures.NewTestRecipe(fixtures.WithSourceURL(
			"https://example.com/recipes/" + string(rune('a'+i))))
		r.ID = 0
		if err := repo.Create(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}

	svc := &recUC.Service{Repo: repo}
	result, err := svc.ListPaginated(context.Background(), pagination.Params{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListPaginated err=%v", err)
	}
	if len(result.Data) != 2 {
		t.Fatalf("want 2 rows, got %d", len(result.Data))
	}
	if result.Pagination.Total != 5 {
		t.Fatalf("want total 5, got %d", result.Pagination.Total)
	}
	if result.Pagination.TotalPages != 3 {
		t.Fatalf("want 3 pages, got %d", result.Pagination.TotalPages)
	}
}

func TestService_ListPaginated_CountError(t *testing.T) {
	repo := newStub()
	repo.err = errors.New("db down")
	svc := &recUC.Service{Repo: repo}
	if _, err := svc.ListPaginated(context.Background(), pagination.Params{Page: 1, Limit: 20}); err == nil {
		t.Fatal("want error, got nil")
	}
}

/* ───────── Search ───────── */

func TestService_Search(t *testing.T) {
	repo := newStub()
	r := fixtures.NewTestRecipe()
	r.ID = 0
	if err := repo.Create(context.Background(), r); err != nil {
		t.Fatal(err)
	}

	svc := &recUC.Service{Repo: repo}
	got, err := svc.Search(context.Background(), "lentil soup", repository.RecipeSearchFilters{})
	if err != nil {
		t.Fatalf("Search err=%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 row, got %d", len(got))
	}
}

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"lentil soup", 2},
		{"  lentil   soup  ", 2},
		{"", 0},
		{"   ", 0},
		{"one", 1},
	}
	for _, tt := range tests {
		if got := recUC.SplitKeywords(tt.in); len(got) != tt.want {
			t.Fatalf("SplitKeywords(%q) = %v, want %d tokens", tt.in, got, tt.want)
		}
	}
}

/* ───────── Delete ───────── */

func TestService_Delete(t *testing.T) {
	repo := newStub()
	r := fixtures.NewTestRecipe()
	r.ID = 0
	if err := repo.Create(context.Background(), r); err != nil {
		t.Fatal(err)
	}

	svc := &recUC.Service{Repo: repo}
	if err := svc.Delete(context.Background(), r.ID); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if _, err := svc.Get(context.Background(), r.ID); !errors.Is(err, recUC.ErrRecipeNotFound) {
		t.Fatalf("recipe still present after delete: %v", err)
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	svc := &recUC.Service{Repo: newStub()}
	if err := svc.Delete(context.Background(), 42); !errors.Is(err, recUC.ErrRecipeNotFound) {
		t.Fatalf("want ErrRecipeNotFound, got %v", err)
	}
}

func TestService_Delete_InvalidID(t *testing.T) {
	svc := &recUC.Service{Repo: newStub()}
	if err := svc.Delete(context.Background(), 0); !errors.Is(err, recUC.ErrInvalidRecipeID) {
		t.Fatalf("want ErrInvalidRecipeID, got %v", err)
	}
}
