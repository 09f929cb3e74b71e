package domain

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Unclassified 没有规则匹配时的终态输出，不是错误
const Unclassified = "Not matched with any strategy"

// Zone 策略区域前缀
type Zone string

const (
	ZoneEuropean Zone = "E"
	ZoneAmerican Zone = "A"
)

// StrategyCode 区域前缀 + 分类符号，例如 ECS
type StrategyCode string

// Flag 规则中对相等性标志的要求
type Flag int

const (
	Any Flag = iota
	Yes
	No
)

func (f Flag) matches(v bool) bool {
	switch f {
	case Yes:
		return v
	case No:
		return !v
	default:
		return true
	}
}

// Rule 分类规则：Patterns 中任一 token 组合 (按多重集比较，与腿顺序无关) 且标志满足即命中
type Rule struct {
	Patterns     []string
	SameMaturity Flag
	SameStrike   Flag
	Symbol       string
	Name         string
}

// DefaultRules 按顺序匹配，先命中者生效。新增策略只需在此追加一行。
var DefaultRules = []Rule{
	{Patterns: []string{"+C", "-C"}, Symbol: "C", Name: "call"},
	{Patterns: []string{"+P", "-P"}, Symbol: "P", Name: "put"},
	{Patterns: []string{"+C+P"}, SameMaturity: Yes, SameStrike: Yes, Symbol: "STD", Name: "straddle"},
	{Patterns: []string{"+C+P"}, SameMaturity: Yes, SameStrike: No, Symbol: "STG", Name: "strangle"},
	{Patterns: []string{"+C-C"}, SameMaturity: Yes, SameStrike: No, Symbol: "CS", Name: "call spread"},
	{Patterns: []string{"+P-P"}, SameMaturity: Yes, SameStrike: No, Symbol: "PS", Name: "put spread"},
	{Patterns: []string{"+C-C"}, SameMaturity: No, SameStrike: Yes, Symbol: "CC", Name: "call calendar"},
	{Patterns: []string{"+P-P"}, SameMaturity: No, SameStrike: Yes, Symbol: "PC", Name: "put calendar"},
	{Patterns: []string{"+C-C-C"}, SameMaturity: Yes, SameStrike: No, Symbol: "CL", Name: "call ladder"},
	{Patterns: []string{"+P-P-P"}, SameMaturity: Yes, SameStrike: No, Symbol: "PL", Name: "put ladder"},
	{Patterns: []string{"+C-XC"}, SameMaturity: Yes, SameStrike: No, Symbol: "CR", Name: "call ratio"},
	{Patterns: []string{"+P-XP"}, SameMaturity: Yes, SameStrike: No, Symbol: "PR", Name: "put ratio"},
	{Patterns: []string{"+C-XC+C"}, SameMaturity: Yes, SameStrike: No, Symbol: "CB", Name: "call butterfly"},
	{Patterns: []string{"+P-XP+P"}, SameMaturity: Yes, SameStrike: No, Symbol: "PB", Name: "put butterfly"},
}

var tokenPattern = regexp.MustCompile(`[+-]X?[CP]`)

// SplitTokens 把拼接后的模式串拆成 token 列表
func SplitTokens(pattern string) []string {
	return tokenPattern.FindAllString(pattern, -1)
}

func tokenKey(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return strings.Join(sorted, "")
}

// Classification 分类结果
type Classification struct {
	Zone            Zone         `json:"zone"`
	Tokens          []string     `json:"tokens"`
	Pattern         string       `json:"pattern"`
	SameMaturity    bool         `json:"same_maturity"`
	SameStrike      bool         `json:"same_strike"`
	Code            StrategyCode `json:"code,omitempty"`
	Name            string       `json:"name,omitempty"`
	Matched         bool         `json:"matched"`
	StrikeDisplay   string       `json:"strike_display"`
	MaturityDisplay string       `json:"maturity_display"`
}

// Label 分类码，未命中时返回 Unclassified
func (c Classification) Label() string {
	if !c.Matched {
		return Unclassified
	}
	return string(c.Code)
}

// Classifier 基于有序规则表的策略分类器
type Classifier struct {
	rules []Rule
	keys  [][]string
}

// NewClassifier 预先计算每条规则的多重集键
func NewClassifier(rules []Rule) *Classifier {
	c := &Classifier{rules: rules, keys: make([][]string, len(rules))}
	for i, r := range rules {
		for _, p := range r.Patterns {
			c.keys[i] = append(c.keys[i], tokenKey(SplitTokens(p)))
		}
	}
	return c
}

var defaultClassifier = NewClassifier(DefaultRules)

// Classify 使用默认规则表分类
func Classify(legs []OptionLeg) Classification {
	return defaultClassifier.Classify(legs)
}

// Classify 区域只看第一条腿的行权方式；token 按腿顺序拼接，规则按多重集匹配
func (c *Classifier) Classify(legs []OptionLeg) Classification {
	out := Classification{Zone: ZoneOf(legs)}
	if len(legs) == 0 {
		return out
	}
	out.Tokens = make([]string, len(legs))
	for i, leg := range legs {
		out.Tokens[i] = LegToken(leg)
	}
	out.Pattern = strings.Join(out.Tokens, "")
	out.SameMaturity = allEqual(legs, func(l OptionLeg) string { return MaturityKey(l.ExpiryDate) })
	out.SameStrike = allEqual(legs, func(l OptionLeg) string { return FormatNumber(l.Strike) })
	out.StrikeDisplay = joinDisplay(legs, func(l OptionLeg) string { return FormatNumber(l.Strike) })
	out.MaturityDisplay = joinDisplay(legs, func(l OptionLeg) string { return MaturityLabel(l.ExpiryDate) })

	key := tokenKey(out.Tokens)
	for i, r := range c.rules {
		if !r.SameMaturity.matches(out.SameMaturity) || !r.SameStrike.matches(out.SameStrike) {
			continue
		}
		for _, k := range c.keys[i] {
			if k == key {
				out.Code = StrategyCode(string(out.Zone) + r.Symbol)
				out.Name = r.Name
				out.Matched = true
				return out
			}
		}
	}
	return out
}

// ZoneOf 只取第一条腿：欧式为 E，否则为 A
func ZoneOf(legs []OptionLeg) Zone {
	if len(legs) > 0 && legs[0].Style == ExerciseEuropean {
		return ZoneEuropean
	}
	return ZoneAmerican
}

// LegToken 方向 + 比例标记 + 类型，例如 +C、-XP
func LegToken(leg OptionLeg) string {
	var b strings.Builder
	if leg.Multiplier > 0 {
		b.WriteByte('+')
	} else {
		b.WriteByte('-')
	}
	if leg.Multiplier > 1 || leg.Multiplier < -1 {
		b.WriteByte('X')
	}
	if leg.Right == RightCall {
		b.WriteByte('C')
	} else {
		b.WriteByte('P')
	}
	return b.String()
}

// MaturityKey 完整到期日，例如 17MAR25，用于判断到期日是否一致
func MaturityKey(t time.Time) string {
	return strings.ToUpper(t.Format("02Jan06"))
}

// MaturityLabel 展示用到期月份，例如 MAR25
func MaturityLabel(t time.Time) string {
	return strings.ToUpper(t.Format("Jan06"))
}

// FormatNumber 最短十进制表示
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func allEqual(legs []OptionLeg, key func(OptionLeg) string) bool {
	first := key(legs[0])
	for _, l := range legs[1:] {
		if key(l) != first {
			return false
		}
	}
	return true
}

func joinDisplay(legs []OptionLeg, render func(OptionLeg) string) string {
	if allEqual(legs, render) {
		return render(legs[0])
	}
	parts := make([]string, len(legs))
	for i, l := range legs {
		parts[i] = render(l)
	}
	return strings.Join(parts, "/")
}
