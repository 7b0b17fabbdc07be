package spamguard

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"imperial-warden/internal/utils"
)

type Verdict int

const (
	Clean Verdict = iota
	Warn
	Mute
	Kick
)

func (v Verdict) String() string {
	switch v {
	case Warn:
		return "warn"
	case Mute:
		return "mute"
	case Kick:
		return "kick"
	default:
		return "clean"
	}
}

// Fixed detector constants, calibrated against observed abuse. Not
// runtime-configurable.
const (
	traceSize           = 10
	repetitionSample    = 5
	repetitionMin       = 3
	similarityThreshold = 0.8
	frequencyCount      = 5
	frequencyWindow     = 5 * time.Second
	shoutRatio          = 0.7
	shoutMinLength      = 12
	mentionLimit        = 5

	scoreRepetition = 3
	scoreFrequency  = 2
	scoreShouting   = 2
	scoreMentions   = 3
	scoreLinks      = 2

	kickScore = 7
	muteScore = 5
	warnScore = 2
)

var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:free|claim)\s+nitro\b`),
}

var shortenerHosts = map[string]struct{}{
	"bit.ly":       {},
	"tinyurl.com":  {},
	"grabify.link": {},
	"cutt.ly":      {},
}

type fingerprint struct {
	hash      uint64
	length    int
	capsRatio float64
	mentions  int
	content   string
}

type Sample struct {
	UserID    string
	ChannelID string
	Content   string
	Mentions  int
	At        time.Time
}

type Module struct {
	mu     sync.Mutex
	traces map[string][]fingerprint
	rates  map[string]*utils.SlidingWindow
}

func New() *Module {
	return &Module{
		traces: make(map[string][]fingerprint),
		rates:  make(map[string]*utils.SlidingWindow),
	}
}

// Inspect records the message fingerprint into the user's bounded trace
// and scores the composite spam signals.
func (m *Module) Inspect(sample Sample) (Verdict, string) {
	fp := fingerprint{
		hash:      utils.ContentHash(sample.Content),
		length:    len(sample.Content),
		capsRatio: utils.CapsRatio(sample.Content),
		mentions:  sample.Mentions,
		content:   sample.Content,
	}

	m.mu.Lock()
	trace := append(m.traces[sample.UserID], fp)
	if len(trace) > traceSize {
		trace = trace[len(trace)-traceSize:]
	}
	m.traces[sample.UserID] = trace
	rate := m.rates[sample.UserID]
	if rate == nil {
		rate = utils.NewSlidingWindow(frequencyWindow)
		m.rates[sample.UserID] = rate
	}
	m.mu.Unlock()

	score := 0
	var reasons []string

	if repeated(trace, fp) {
		score += scoreRepetition
		reasons = append(reasons, "repetition")
	}
	if rate.Add(sample.At) >= frequencyCount {
		score += scoreFrequency
		reasons = append(reasons, "frequency")
	}
	if fp.length >= shoutMinLength && fp.capsRatio >= shoutRatio {
		score += scoreShouting
		reasons = append(reasons, "shouting")
	}
	if fp.mentions >= mentionLimit {
		score += scoreMentions
		reasons = append(reasons, "mention_flood")
	}
	if suspiciousLinks(sample.Content) {
		score += scoreLinks
		reasons = append(reasons, "links")
	}

	switch {
	case score >= kickScore:
		return Kick, strings.Join(reasons, "+")
	case score >= muteScore:
		return Mute, strings.Join(reasons, "+")
	case score >= warnScore:
		return Warn, strings.Join(reasons, "+")
	default:
		return Clean, ""
	}
}

func repeated(trace []fingerprint, current fingerprint) bool {
	sample := trace
	if len(sample) > repetitionSample {
		sample = sample[len(sample)-repetitionSample:]
	}
	similar := 0
	for _, fp := range sample {
		if fp.hash == current.hash {
			similar++
			continue
		}
		if utils.ShingleSimilarity(fp.content, current.content, 3) >= similarityThreshold {
			similar++
		}
	}
	return similar >= repetitionMin
}

func suspiciousLinks(content string) bool {
	if utils.HasInvite(content) {
		return true
	}
	for _, pattern := range linkPatterns {
		if pattern.MatchString(content) {
			return true
		}
	}
	for _, raw := range utils.ExtractURLs(content) {
		host, err := utils.NormalizeHost(raw)
		if err != nil {
			continue
		}
		if _, ok := shortenerHosts[host]; ok {
			return true
		}
	}
	return false
}
