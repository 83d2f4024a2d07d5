// Package signal gives seeded news entries a heuristic 0-10 score, standing
// in for the backend's AI rating when the devserver imports a feed.
package signal

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// SourceWeights maps feed titles to their weight (0.0-1.0).
type SourceWeights map[string]float64

type Input struct {
	Title       string
	Description string
	Source      string
	Published   time.Time
}

// Breakdown shows how each component contributed to the final score.
type Breakdown struct {
	Recency        float64
	SourceWeight   float64
	Depth          float64
	KeywordDensity float64
	Final          float64
}

const (
	weightRecency  = 0.30
	weightSource   = 0.20
	weightDepth    = 0.20
	weightKeywords = 0.30
)

// Score computes a score (0.0-10.0, one decimal) as of now.
func Score(input Input, weights SourceWeights, now time.Time) float64 {
	return ScoreWithBreakdown(input, weights, now).Final
}

func ScoreWithBreakdown(input Input, weights SourceWeights, now time.Time) Breakdown {
	b := Breakdown{
		Recency:        recencyScore(input.Published, now),
		SourceWeight:   sourceScore(input.Source, weights),
		Depth:          depthScore(input.Description),
		KeywordDensity: keywordScore(input.Title, input.Description),
	}
	raw := b.Recency*weightRecency +
		b.SourceWeight*weightSource +
		b.Depth*weightDepth +
		b.KeywordDensity*weightKeywords
	b.Final = math.Round(raw*100) / 10
	return b
}

// recencyScore halves every 24h: 1.0 at publish, 0.25 at 48h.
func recencyScore(published, now time.Time) float64 {
	if published.IsZero() {
		return 0.0
	}
	hours := now.Sub(published).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Exp(-0.02888 * hours)
}

func sourceScore(source string, weights SourceWeights) float64 {
	if w, ok := weights[source]; ok {
		return w
	}
	return 0.5
}

func depthScore(description string) float64 {
	words := len(strings.Fields(description))
	switch {
	case words >= 120:
		return 1.0
	case words >= 40:
		return 0.6
	default:
		return 0.2
	}
}

var web3Keywords = map[string]bool{
	"ethereum": true, "bitcoin": true, "solana": true, "rollup": true,
	"rollups": true, "layer": true, "l2": true, "zk": true, "zero-knowledge": true,
	"defi": true, "dex": true, "amm": true, "liquidity": true, "lending": true,
	"staking": true, "restaking": true, "validator": true, "validators": true,
	"stablecoin": true, "stablecoins": true, "usdc": true, "usdt": true,
	"etf": true, "sec": true, "regulation": true, "mica": true,
	"exploit": true, "hack": true, "bridge": true, "bridges": true,
	"token": true, "tokens": true, "airdrop": true, "dao": true,
	"upgrade": true, "fork": true, "mainnet": true, "testnet": true,
	"nft": true, "nfts": true, "onchain": true, "on-chain": true, "wallet": true,
}

// keywordScore is the density of Web3 terms, 10% or more counting as 1.0.
func keywordScore(title, description string) float64 {
	text := strings.ToLower(title + " " + description)
	var words []string
	for _, w := range strings.Fields(text) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
		})
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return 0.0
	}

	hits := 0
	for _, w := range words {
		if web3Keywords[w] {
			hits++
		}
	}
	score := float64(hits) / float64(len(words)) * 10
	if score > 1.0 {
		score = 1.0
	}
	return score
}
