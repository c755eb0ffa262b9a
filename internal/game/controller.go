package game

import (
	"math/rand/v2"
	"time"

	"sketch-guess/internal/surface"

	"github.com/rs/zerolog"
)

type State string

const (
	StateAwaitingModel State = "awaiting_model"
	StateRoundActive   State = "round_active"
	StateRoundWon      State = "round_won"
)

const DefaultWinDelay = 2 * time.Second

// Round is replaced as a whole at every round start; only the score carries
// over.
type Round struct {
	Number     int
	TargetWord string
	Active     bool
	Score      int
}

type controllerConfig struct {
	vocab     Vocabulary
	surfaces  surface.Set
	display   *Display
	scheduler Scheduler
	post      func(func())
	winDelay  time.Duration
	rng       *rand.Rand
	log       zerolog.Logger
}

// Controller owns the round state machine. It is not safe for concurrent
// use; Session serializes every call.
type Controller struct {
	state      State
	round      Round
	modelReady bool

	vocab     Vocabulary
	surfaces  surface.Set
	display   *Display
	scheduler Scheduler
	post      func(func())
	winDelay  time.Duration
	rng       *rand.Rand
	log       zerolog.Logger
}

func newController(cfg controllerConfig) *Controller {
	if cfg.scheduler == nil {
		cfg.scheduler = TimeScheduler{}
	}
	if cfg.post == nil {
		cfg.post = func(f func()) { f() }
	}
	return &Controller{
		state:     StateAwaitingModel,
		vocab:     cfg.vocab,
		surfaces:  cfg.surfaces,
		display:   cfg.display,
		scheduler: cfg.scheduler,
		post:      cfg.post,
		winDelay:  cfg.winDelay,
		rng:       cfg.rng,
		log:       cfg.log,
	}
}

func (c *Controller) State() State       { return c.state }
func (c *Controller) Round() Round       { return c.round }
func (c *Controller) Active() bool       { return c.round.Active }
func (c *Controller) TargetWord() string { return c.round.TargetWord }
func (c *Controller) ModelLoaded() bool  { return c.modelReady }

// ModelReady starts the first round. Only the first call has any effect.
func (c *Controller) ModelReady() {
	if c.modelReady {
		return
	}
	c.modelReady = true
	c.log.Info().Msg("model ready; starting first round")
	c.StartRound()
}

// StartRound hides the win overlay, draws a new target word and clears both
// surfaces. Running it twice in a row is harmless.
func (c *Controller) StartRound() {
	c.round = Round{
		Number:     c.round.Number + 1,
		TargetWord: c.vocab.Pick(c.rng),
		Active:     true,
		Score:      c.round.Score,
	}
	c.state = StateRoundActive
	c.display.SetOverlay(false)
	c.display.SetTargetWord(DisplayWord(c.round.TargetWord))
	c.Clear()
	c.log.Info().Int("round", c.round.Number).Str("target", c.round.TargetWord).Msg("round started")
}

// Win ends the active round. It reports false, and does nothing, when no
// round is active, so late or duplicate win signals are absorbed.
func (c *Controller) Win() bool {
	if !c.round.Active {
		return false
	}
	c.round.Active = false
	c.round.Score++
	c.state = StateRoundWon
	c.display.SetScore(c.round.Score)
	c.display.SetOverlay(true)
	c.log.Info().Int("round", c.round.Number).Int("score", c.round.Score).Str("target", c.round.TargetWord).Msg("round won")

	// The pending start is not cancelled by a skip; StartRound tolerates
	// running again right after one.
	c.scheduler.AfterFunc(c.winDelay, func() {
		c.post(c.StartRound)
	})
	return true
}

// Skip abandons the current round without scoring.
func (c *Controller) Skip() {
	c.log.Info().Int("round", c.round.Number).Str("target", c.round.TargetWord).Msg("round skipped")
	c.StartRound()
}

// Clear wipes both surfaces and the guess display. Round state is untouched.
func (c *Controller) Clear() {
	c.surfaces.Clear()
	c.display.ResetGuess()
}
