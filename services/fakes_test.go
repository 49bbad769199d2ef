package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/scoring"
)

// Заглушка sql-драйвера: транзакции открываются и коммитятся вхолостую,
// реальные запросы в тестах идут через фейковые репозитории.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("servicestub", stubDriver{})
}

func stubDB() *sql.DB {
	db, err := sql.Open("servicestub", "")
	if err != nil {
		panic(err)
	}
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intp(v int) *int {
	return &v
}

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[int]*models.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[int]*models.Game)}
}

func (f *fakeGameRepo) put(game *models.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[game.ID] = game
}

func (f *fakeGameRepo) Create(ctx context.Context, game *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game.ID = len(f.games) + 1
	f.games[game.ID] = game
	return nil
}

func (f *fakeGameRepo) GetByID(ctx context.Context, id int) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (f *fakeGameRepo) ListByRound(ctx context.Context, roundID int) ([]*models.Game, error) {
	return f.List(ctx, &roundID, false)
}

func (f *fakeGameRepo) List(ctx context.Context, roundID *int, upcomingOnly bool) ([]*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	games := make([]*models.Game, 0)
	for _, g := range f.games {
		if roundID != nil && g.RoundID != *roundID {
			continue
		}
		copied := *g
		games = append(games, &copied)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (f *fakeGameRepo) Update(ctx context.Context, game *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[game.ID]; !ok {
		return repositories.ErrGameNotFound
	}
	f.games[game.ID] = game
	return nil
}

func (f *fakeGameRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[id]; !ok {
		return repositories.ErrGameNotFound
	}
	delete(f.games, id)
	return nil
}

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams map[int]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team)}
}

func (f *fakeTeamRepo) put(team *models.Team) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams[team.ID] = team
}

func (f *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.teams {
		if t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = len(f.teams) + 1
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (f *fakeTeamRepo) List(ctx context.Context) ([]*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	teams := make([]*models.Team, 0, len(f.teams))
	for _, t := range f.teams {
		copied := *t
		teams = append(teams, &copied)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (f *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	copied := *team
	f.teams[team.ID] = &copied
	return nil
}

func (f *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	return nil
}

func (f *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[int]*models.Result // ключ — gameID
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[int]*models.Result)}
}

func (f *fakeResultRepo) Create(ctx context.Context, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.results[result.GameID]; ok {
		return repositories.ErrResultAlreadyExists
	}
	result.ID = len(f.results) + 1
	copied := *result
	f.results[result.GameID] = &copied
	return nil
}

func (f *fakeResultRepo) GetByGameID(ctx context.Context, exec repositories.SQLExecutor, gameID int) (*models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[gameID]
	if !ok {
		return nil, repositories.ErrResultNotFound
	}
	copied := *result
	return &copied, nil
}

func (f *fakeResultRepo) Update(ctx context.Context, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.results[result.GameID]
	if !ok {
		return repositories.ErrResultNotFound
	}
	result.ID = existing.ID
	copied := *result
	f.results[result.GameID] = &copied
	return nil
}

type fakePredictionRepo struct {
	mu          sync.Mutex
	predictions []*models.Prediction
	games       *fakeGameRepo // для round_id в снимке
	nextID      int
}

func newFakePredictionRepo(games *fakeGameRepo) *fakePredictionRepo {
	return &fakePredictionRepo{games: games, nextID: 1}
}

func (f *fakePredictionRepo) Create(ctx context.Context, prediction *models.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.predictions {
		if p.UserID == prediction.UserID && p.GameID == prediction.GameID {
			return repositories.ErrPredictionConflict
		}
	}
	prediction.ID = f.nextID
	f.nextID++
	if prediction.CreatedAt.IsZero() {
		prediction.CreatedAt = time.Now()
	}
	copied := *prediction
	f.predictions = append(f.predictions, &copied)
	return nil
}

func (f *fakePredictionRepo) GetByID(ctx context.Context, id int) (*models.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.predictions {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrPredictionNotFound
}

func (f *fakePredictionRepo) GetByUserAndGame(ctx context.Context, userID, gameID int) (*models.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.predictions {
		if p.UserID == userID && p.GameID == gameID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrPredictionNotFound
}

func (f *fakePredictionRepo) ListByGame(ctx context.Context, exec repositories.SQLExecutor, gameID int) ([]*models.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	predictions := make([]*models.Prediction, 0)
	for _, p := range f.predictions {
		if p.GameID == gameID {
			copied := *p
			predictions = append(predictions, &copied)
		}
	}
	return predictions, nil
}

func (f *fakePredictionRepo) ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	predictions := make([]*models.Prediction, 0)
	for _, p := range f.predictions {
		if p.UserID == userID {
			copied := *p
			predictions = append(predictions, &copied)
		}
	}
	return predictions, nil
}

func (f *fakePredictionRepo) UpdatePoints(ctx context.Context, exec repositories.SQLExecutor, predictionID int, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.predictions {
		if p.ID == predictionID {
			v := points
			p.PointsEarned = &v
			return nil
		}
	}
	return repositories.ErrPredictionNotFound
}

func (f *fakePredictionRepo) ListSnapshot(ctx context.Context, roundID, userID *int) ([]scoring.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]scoring.Entry, 0)
	for _, p := range f.predictions {
		game, err := f.games.GetByID(ctx, p.GameID)
		if err != nil {
			return nil, err
		}
		if roundID != nil && game.RoundID != *roundID {
			continue
		}
		if userID != nil && p.UserID != *userID {
			continue
		}
		entry := scoring.Entry{
			UserID:    p.UserID,
			GameID:    p.GameID,
			RoundID:   game.RoundID,
			CreatedAt: p.CreatedAt,
		}
		if p.PointsEarned != nil {
			v := *p.PointsEarned
			entry.Points = &v
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User)}
}

func (f *fakeUserRepo) put(user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = len(f.users) + 1
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = avatarKey
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			copied := *u
			users = append(users, &copied)
		}
	}
	return users, nil
}

type fakeRoundRepo struct {
	mu     sync.Mutex
	rounds map[int]*models.Round
}

func newFakeRoundRepo() *fakeRoundRepo {
	return &fakeRoundRepo{rounds: make(map[int]*models.Round)}
}

func (f *fakeRoundRepo) put(round *models.Round) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rounds[round.ID] = round
}

func (f *fakeRoundRepo) Create(ctx context.Context, round *models.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	round.ID = len(f.rounds) + 1
	f.rounds[round.ID] = round
	return nil
}

func (f *fakeRoundRepo) GetByID(ctx context.Context, id int) (*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	round, ok := f.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	copied := *round
	return &copied, nil
}

func (f *fakeRoundRepo) List(ctx context.Context) ([]*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rounds := make([]*models.Round, 0, len(f.rounds))
	for _, r := range f.rounds {
		copied := *r
		rounds = append(rounds, &copied)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].ID < rounds[j].ID })
	return rounds, nil
}

func (f *fakeRoundRepo) Update(ctx context.Context, round *models.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rounds[round.ID]; !ok {
		return repositories.ErrRoundNotFound
	}
	f.rounds[round.ID] = round
	return nil
}

func (f *fakeRoundRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rounds[id]; !ok {
		return repositories.ErrRoundNotFound
	}
	delete(f.rounds, id)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	rounds []int
}

func (f *fakePublisher) PublishUpdate(ctx context.Context, roundID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rounds = append(f.rounds, roundID)
}

func (f *fakePublisher) published() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.rounds...)
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages map[string][]interface{}
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{messages: make(map[string][]interface{})}
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[roomID] = append(f.messages[roomID], message)
}

func (f *fakeBroadcaster) roomMessages(roomID string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interface{}(nil), f.messages[roomID]...)
}

type fakeNotifier struct {
	mu      sync.Mutex
	gameIDs []int
}

func (f *fakeNotifier) NotifyResultChanged(gameID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gameIDs = append(f.gameIDs, gameID)
}

func (f *fakeNotifier) notified() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.gameIDs...)
}
