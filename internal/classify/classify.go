// Package classify assigns a Web3 topic to a news entry by keyword.
package classify

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

type Category string

const (
	DeFi           Category = "DeFi"
	Infrastructure Category = "Infrastructure"
	Stablecoins    Category = "Stablecoins"
	Regulation     Category = "Regulation"
	Security       Category = "Security"
	NFTs           Category = "NFTs & Gaming"
	Markets        Category = "Markets"
	General        Category = "General"
)

// AllCategories returns all valid categories in canonical order. Earlier
// categories win ties.
func AllCategories() []Category {
	return []Category{Security, Regulation, Stablecoins, DeFi, Infrastructure, NFTs, Markets, General}
}

var categoryKeywords = map[Category][]string{
	Security: {
		"exploit", "hack", "hacked", "drained", "vulnerability", "audit",
		"phishing", "attacker", "stolen", "rug pull", "private key",
	},
	Regulation: {
		"sec", "cftc", "regulation", "regulator", "regulatory", "mica",
		"lawsuit", "court", "compliance", "license", "sanction", "bill",
	},
	Stablecoins: {
		"stablecoin", "usdc", "usdt", "tether", "circle", "peg", "depeg",
		"dai", "cbdc",
	},
	DeFi: {
		"defi", "dex", "amm", "lending", "liquidity", "yield", "swap",
		"uniswap", "aave", "tvl", "perpetual", "perps", "vault",
	},
	Infrastructure: {
		"rollup", "l2", "zk", "mainnet", "testnet", "upgrade", "validator",
		"staking", "restaking", "consensus", "fork", "client", "bridge",
		"layer 2", "data availability", "sequencer",
	},
	NFTs: {
		"nft", "gaming", "metaverse", "collectible", "ordinals", "marketplace",
		"game",
	},
	Markets: {
		"etf", "price", "rally", "inflows", "outflows", "market", "trading",
		"liquidation", "funding", "halving", "volatility", "bitcoin", "btc",
	},
}

// Aliases maps short CLI names to categories.
var Aliases = map[string]Category{
	"security": Security,
	"reg":      Regulation,
	"stables":  Stablecoins,
	"defi":     DeFi,
	"infra":    Infrastructure,
	"nft":      NFTs,
	"markets":  Markets,
	"general":  General,
}

// ResolveAlias maps a CLI alias or a full category name to a Category.
func ResolveAlias(alias string) (Category, error) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if cat, ok := Aliases[alias]; ok {
		return cat, nil
	}
	for _, cat := range AllCategories() {
		if strings.EqualFold(string(cat), alias) {
			return cat, nil
		}
	}
	valid := make([]string, 0, len(Aliases))
	for k := range Aliases {
		valid = append(valid, k)
	}
	sort.Strings(valid)
	return "", fmt.Errorf("unknown topic %q (valid: %s)", alias, strings.Join(valid, ", "))
}

// Classify picks the category for an entry. Title keywords count double;
// entries with no keyword hit are General.
func Classify(title, description string) Category {
	titleTokens := tokenize(title)
	descTokens := tokenize(description)
	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)

	bestCat := General
	bestScore := 0

	for _, cat := range AllCategories() {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(kw, " ") {
				if strings.Contains(titleLower, kw) {
					score += 2
				}
				if strings.Contains(descLower, kw) {
					score++
				}
				continue
			}
			score += 2 * countToken(titleTokens, kw)
			score += countToken(descTokens, kw)
		}
		if score > bestScore {
			bestScore = score
			bestCat = cat
		}
	}
	return bestCat
}

// countToken counts tokens equal to kw or its plural.
func countToken(tokens []string, kw string) int {
	n := 0
	for _, t := range tokens {
		if t == kw || t == kw+"s" {
			n++
		}
	}
	return n
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
