package loop

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/bugzapper/internal/api"
	"github.com/tomz197/bugzapper/internal/store"
)

// errOffline is reported when no score server is configured.
var errOffline = errors.New("no score server configured")

// Results delivered from backend goroutines to the frame loop.
type (
	scoresLoaded struct {
		scores []store.ScoreRecord
		err    error
	}
	pastStatsLoaded struct {
		stats []store.PlayerStatsRecord
		err   error
	}
	scoresCleared struct {
		err error
	}
	gameSubmitted struct {
		seq  int
		game playedGame
		err  error
	}
)

// playedGame is a finished game as the player submitted it. ScoreSaved and
// StatsSaved record which half the server has accepted, so a retry only
// sends what is missing.
type playedGame struct {
	PlayerName string
	Stats      Stats
	At         time.Time
	ScoreSaved bool
	StatsSaved bool
}

// backend runs score server calls off the frame loop. Each call runs in its
// own goroutine and reports on results; the loop drains results between
// frames, so session state is only touched by the loop goroutine.
type backend struct {
	ctx     context.Context
	client  *api.Client
	logger  *log.Logger
	results chan any
}

func newBackend(ctx context.Context, client *api.Client, logger *log.Logger) *backend {
	return &backend{
		ctx:     ctx,
		client:  client,
		logger:  logger,
		results: make(chan any, 8),
	}
}

// run executes fn in a goroutine and delivers its result unless ctx ends first.
func (b *backend) run(fn func(ctx context.Context) any) {
	go func() {
		msg := fn(b.ctx)
		select {
		case b.results <- msg:
		case <-b.ctx.Done():
		}
	}()
}

func (b *backend) loadScores() {
	b.run(func(ctx context.Context) any {
		if b.client == nil {
			return scoresLoaded{err: errOffline}
		}
		scores, err := b.client.TopScores(ctx)
		if err != nil {
			b.logger.Error("load score board", "err", err)
		}
		return scoresLoaded{scores: scores, err: err}
	})
}

func (b *backend) loadPastStats() {
	b.run(func(ctx context.Context) any {
		if b.client == nil {
			return pastStatsLoaded{err: errOffline}
		}
		stats, err := b.client.RecentPlayerStats(ctx)
		if err != nil {
			b.logger.Error("load past game stats", "err", err)
		}
		return pastStatsLoaded{stats: stats, err: err}
	})
}

func (b *backend) clearScores() {
	b.run(func(ctx context.Context) any {
		if b.client == nil {
			return scoresCleared{err: errOffline}
		}
		err := b.client.ClearScores(ctx)
		if err != nil {
			b.logger.Error("clear scores", "err", err)
		}
		return scoresCleared{err: err}
	})
}

// submit sends whichever of the score and the game statistics the server
// has not accepted yet. Both are attempted; the submission succeeds only
// once both are stored. Offline play keeps the game locally. seq tags the
// result so the loop can drop answers for an abandoned name entry.
func (b *backend) submit(seq int, game playedGame) {
	b.run(func(ctx context.Context) any {
		if b.client == nil {
			return gameSubmitted{seq: seq, game: game}
		}

		var scoreErr, statsErr error
		if !game.ScoreSaved {
			if _, scoreErr = b.client.SubmitScore(ctx, game.PlayerName, game.Stats.Score); scoreErr == nil {
				game.ScoreSaved = true
			}
		}
		if !game.StatsSaved {
			_, statsErr = b.client.SubmitPlayerStats(ctx, api.GameStats{
				PlayerName:         game.PlayerName,
				BulletsFired:       game.Stats.ShotsFired,
				AsteroidsDestroyed: game.Stats.AsteroidsDestroyed,
				LevelReached:       game.Stats.LevelReached,
				TimePlayed:         game.Stats.TimePlayed,
				Score:              game.Stats.Score,
			})
			if statsErr == nil {
				game.StatsSaved = true
			}
		}

		err := errors.Join(scoreErr, statsErr)
		if err != nil {
			b.logger.Error("submit score and statistics", "player", game.PlayerName,
				"scoreSaved", game.ScoreSaved, "statsSaved", game.StatsSaved, "err", err)
		} else {
			b.logger.Info("game submitted", "player", game.PlayerName, "score", game.Stats.Score)
		}
		return gameSubmitted{seq: seq, game: game, err: err}
	})
}
