package fplapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/fpl-pipeline/internal/platform/cache"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/resilience"
	"github.com/riskibarqy/fpl-pipeline/internal/usecase"
)

const (
	defaultBaseURL           = "https://fantasy.premierleague.com/api"
	defaultPlayerConcurrency = 8
	bootstrapCacheKey        = "fplapi:bootstrap-static"
)

var errFPLTransient = crerr.New("fpl api transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// PlayerConcurrency bounds the parallel per-player summary fetches.
	PlayerConcurrency int
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
	// Cache holds the bootstrap payload between the fetches that need it.
	Cache *cache.Store
}

type Client struct {
	httpClient        *http.Client
	baseURL           string
	maxRetries        int
	playerConcurrency int
	logger            *logging.Logger
	breaker           *resilience.CircuitBreaker
	circuitEnabled    bool
	flight            resilience.SingleFlight
	cache             *cache.Store
}

var _ usecase.StatsProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	playerConcurrency := cfg.PlayerConcurrency
	if playerConcurrency <= 0 {
		playerConcurrency = defaultPlayerConcurrency
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewStore(5 * time.Minute)
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:        httpClient,
		baseURL:           baseURL,
		maxRetries:        maxInt(cfg.MaxRetries, 0),
		playerConcurrency: playerConcurrency,
		logger:            logger,
		breaker:           resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled:    breakerCfg.Enabled,
		cache:             store,
	}
}

func (c *Client) FetchTeams(ctx context.Context) ([]usecase.ExternalTeam, error) {
	bootstrap, err := c.fetchBootstrap(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalTeam, 0, len(bootstrap.Teams))
	for _, team := range bootstrap.Teams {
		if team.ID <= 0 {
			continue
		}
		out = append(out, usecase.ExternalTeam{ID: team.ID, Name: team.Name})
	}

	return out, nil
}

func (c *Client) FetchPlayers(ctx context.Context) ([]usecase.ExternalPlayer, error) {
	bootstrap, err := c.fetchBootstrap(ctx)
	if err != nil {
		return nil, err
	}

	positionLabels := make(map[int]string, len(bootstrap.ElementTypes))
	for _, elemType := range bootstrap.ElementTypes {
		positionLabels[elemType.ID] = elemType.SingularName
	}

	out := make([]usecase.ExternalPlayer, len(bootstrap.Elements))
	var mu sync.Mutex

	fetch := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(c.playerConcurrency)
	for i, element := range bootstrap.Elements {
		i, element := i, element
		fetch.Go(func(ctx context.Context) error {
			var summary elementSummaryEnvelope
			path := fmt.Sprintf("/element-summary/%d/", element.ID)
			if err := c.doJSON(ctx, path, nil, &summary); err != nil {
				return fmt.Errorf("fetch element summary player_id=%d: %w", element.ID, err)
			}

			mapped := usecase.ExternalPlayer{
				ID:          element.ID,
				FirstName:   element.FirstName,
				SecondName:  element.SecondName,
				Position:    positionLabels[element.ElementType],
				TeamID:      element.Team,
				History:     mapPlayerHistory(summary.History),
				HistoryPast: mapPlayerPast(summary.HistoryPast),
			}

			mu.Lock()
			out[i] = mapped
			mu.Unlock()
			return nil
		})
	}
	if err := fetch.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) FetchGameweeks(ctx context.Context) ([]usecase.ExternalGameweek, error) {
	bootstrap, err := c.fetchBootstrap(ctx)
	if err != nil {
		return nil, err
	}

	var fixtures []fixtureRow
	if err := c.doJSON(ctx, "/fixtures/", nil, &fixtures); err != nil {
		return nil, fmt.Errorf("fetch fixtures: %w", err)
	}

	fixturesByEvent := make(map[int][]usecase.ExternalFixture)
	for _, fixture := range fixtures {
		if fixture.ID <= 0 || fixture.Event <= 0 {
			continue
		}
		mapped := usecase.ExternalFixture{
			MatchID:    fixture.ID,
			HomeTeamID: fixture.TeamH,
			AwayTeamID: fixture.TeamA,
		}
		if fixture.TeamHScore != nil {
			mapped.HomeScore = *fixture.TeamHScore
		}
		if fixture.TeamAScore != nil {
			mapped.AwayScore = *fixture.TeamAScore
		}
		if parsed, ok := parseProviderTime(fixture.KickoffTime); ok {
			mapped.KickoffAt = parsed
		}
		fixturesByEvent[fixture.Event] = append(fixturesByEvent[fixture.Event], mapped)
	}

	out := make([]usecase.ExternalGameweek, 0, len(bootstrap.Events))
	for _, event := range bootstrap.Events {
		if event.ID <= 0 {
			continue
		}
		gameweek := usecase.ExternalGameweek{
			ID:       event.ID,
			Finished: event.Finished,
			Fixtures: fixturesByEvent[event.ID],
		}
		if parsed, ok := parseProviderTime(event.DeadlineTime); ok {
			gameweek.DeadlineAt = parsed
		}
		sort.SliceStable(gameweek.Fixtures, func(i, j int) bool {
			return gameweek.Fixtures[i].MatchID < gameweek.Fixtures[j].MatchID
		})
		out = append(out, gameweek)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (c *Client) FetchManager(ctx context.Context, managerID int64) (usecase.ExternalManager, error) {
	if managerID <= 0 {
		return usecase.ExternalManager{}, fmt.Errorf("manager id must be greater than zero")
	}

	bootstrap, err := c.fetchBootstrap(ctx)
	if err != nil {
		return usecase.ExternalManager{}, err
	}
	finishedEvents := make(map[int]bool, len(bootstrap.Events))
	for _, event := range bootstrap.Events {
		finishedEvents[event.ID] = event.Finished
	}

	var entry entryEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/", managerID), nil, &entry); err != nil {
		return usecase.ExternalManager{}, fmt.Errorf("fetch entry manager_id=%d: %w", managerID, err)
	}

	var history entryHistoryEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/history/", managerID), nil, &history); err != nil {
		return usecase.ExternalManager{}, fmt.Errorf("fetch entry history manager_id=%d: %w", managerID, err)
	}

	out := usecase.ExternalManager{
		ID:             managerID,
		FirstName:      entry.PlayerFirstName,
		LastName:       entry.PlayerLastName,
		ChipByGameweek: make(map[int]string, len(history.Chips)),
	}
	for _, chip := range history.Chips {
		out.ChipByGameweek[chip.Event] = chip.Name
	}
	for _, row := range history.Current {
		out.History = append(out.History, usecase.ExternalManagerGameweek{
			Gameweek:      row.Event,
			Points:        row.Points,
			TotalPoints:   row.TotalPoints,
			Rank:          row.OverallRank,
			Transfers:     row.EventTransfers,
			TransfersCost: row.EventTransfersCost,
			BankValue:     row.Bank,
			TeamValue:     row.Value,
			BenchPoints:   row.PointsOnBench,
		})
	}

	picks := make([]usecase.ExternalManagerPicks, len(history.Current))
	fetch := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(c.playerConcurrency)
	for i, row := range history.Current {
		i, gameweek := i, row.Event
		fetch.Go(func(ctx context.Context) error {
			var envelope entryPicksEnvelope
			path := fmt.Sprintf("/entry/%d/event/%d/picks/", managerID, gameweek)
			if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
				return fmt.Errorf("fetch picks manager_id=%d gameweek=%d: %w", managerID, gameweek, err)
			}

			mapped := usecase.ExternalManagerPicks{
				Gameweek:   gameweek,
				Finished:   finishedEvents[gameweek],
				ActiveChip: envelope.ActiveChip,
			}
			for _, pick := range envelope.Picks {
				mapped.Picks = append(mapped.Picks, usecase.ExternalPick{
					PlayerID:      pick.Element,
					Slot:          pick.Position,
					Multiplier:    pick.Multiplier,
					IsCaptain:     pick.IsCaptain,
					IsViceCaptain: pick.IsViceCaptain,
				})
			}
			picks[i] = mapped
			return nil
		})
	}
	if err := fetch.Wait(); err != nil {
		return usecase.ExternalManager{}, err
	}
	out.Picks = picks

	return out, nil
}

func (c *Client) FetchH2HLeague(ctx context.Context, leagueID int64) ([]usecase.ExternalH2HFixture, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("league id must be greater than zero")
	}

	var out []usecase.ExternalH2HFixture
	for page := 1; ; page++ {
		var envelope h2hMatchesEnvelope
		path := fmt.Sprintf("/leagues-h2h-matches/league/%d/", leagueID)
		query := map[string]string{"page": strconv.Itoa(page)}
		if err := c.doJSON(ctx, path, query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch h2h league league_id=%d page=%d: %w", leagueID, page, err)
		}

		for _, row := range envelope.Results {
			out = append(out, usecase.ExternalH2HFixture{
				Gameweek:        row.Event,
				Entry1Name:      row.Entry1Name,
				Entry1Points:    row.Entry1Points,
				Entry1H2HPoints: row.Entry1Total,
				Entry2Name:      row.Entry2Name,
				Entry2Points:    row.Entry2Points,
				Entry2H2HPoints: row.Entry2Total,
			})
		}
		if !envelope.HasNext {
			break
		}
	}

	return out, nil
}

// fetchBootstrap loads the bootstrap payload once and shares it between
// FetchTeams, FetchPlayers, FetchGameweeks and FetchManager.
func (c *Client) fetchBootstrap(ctx context.Context) (bootstrapEnvelope, error) {
	value, err := c.cache.GetOrLoad(ctx, bootstrapCacheKey, func(ctx context.Context) (any, error) {
		var envelope bootstrapEnvelope
		if err := c.doJSON(ctx, "/bootstrap-static/", nil, &envelope); err != nil {
			return nil, fmt.Errorf("fetch bootstrap: %w", err)
		}
		return envelope, nil
	})
	if err != nil {
		return bootstrapEnvelope{}, err
	}

	envelope, ok := value.(bootstrapEnvelope)
	if !ok {
		return bootstrapEnvelope{}, fmt.Errorf("unexpected bootstrap cache payload type %T", value)
	}
	return envelope, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fpl api circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: fantasy stats provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isTransientFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFPLTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 12<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errFPLTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFPLTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "fpl api request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func mapPlayerHistory(rows []elementHistoryRow) []usecase.ExternalPlayerMatch {
	out := make([]usecase.ExternalPlayerMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.ExternalPlayerMatch{
			MatchID:        row.Fixture,
			Gameweek:       row.Round,
			OpponentTeamID: row.OpponentTeam,
			WasHome:        row.WasHome,
			Points:         row.TotalPoints,
			Minutes:        row.Minutes,
			Goals:          row.GoalsScored,
			Assists:        row.Assists,
			CleanSheets:    row.CleanSheets,
			GoalsConceded:  row.GoalsConceded,
			Bonus:          row.Bonus,
			Saves:          row.Saves,
			CBI:            row.CBI,
			ShotsOffTarget: row.ShotsOffTarget,
			YellowCards:    row.YellowCards,
			RedCards:       row.RedCards,
		})
	}
	return out
}

func mapPlayerPast(rows []elementPastRow) []usecase.ExternalPlayerSeason {
	out := make([]usecase.ExternalPlayerSeason, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.ExternalPlayerSeason{
			SeasonName: row.SeasonName,
			Points:     row.TotalPoints,
			Minutes:    row.Minutes,
			Goals:      row.GoalsScored,
			Assists:    row.Assists,
			Bonus:      row.Bonus,
		})
	}
	return out
}

func parseProviderTime(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func isTransientFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errFPLTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
