package types

import (
	"encoding/json"
	"time"
)

// VideoFormat classifies the production style of a short.
type VideoFormat string

const (
	FormatTalkingHead VideoFormat = "talking_head"
	FormatGameplay    VideoFormat = "gameplay"
	FormatDemo        VideoFormat = "demo"
	FormatOther       VideoFormat = "other"
)

// Severity grades how badly a rule violation hurts retention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// Valid reports whether s is one of the three recognized severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityModerate, SeverityMinor:
		return true
	}
	return false
}

// Category groups rules by the retention mechanism they protect.
type Category string

const (
	CategoryHook      Category = "hook"
	CategoryRetention Category = "retention"
	CategoryAudio     Category = "audio"
	CategoryVisual    Category = "visual"
	CategoryPacing    Category = "pacing"
	CategoryStructure Category = "structure"
	CategoryCTA       Category = "cta"
)

// Rule is a single lint check. Rules are immutable build-time data;
// ID must be unique within a RuleSet.
type Rule struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Check       string   `json:"check"`
	GoodExample string   `json:"good_example,omitempty"`
	BadExample  string   `json:"bad_example,omitempty"`
}

// RuleSet bundles the ordered rules for one video format together with
// the prompt scaffolding used to present them to the oracle.
type RuleSet struct {
	Format         VideoFormat `json:"format"`
	Rules          []Rule      `json:"rules"`
	PromptTemplate string      `json:"-"`
}

// RuleViolation is one failed check parsed from the lint oracle response.
type RuleViolation struct {
	RuleID     string   `json:"ruleId"`
	RuleName   string   `json:"ruleName"`
	Severity   Severity `json:"severity"`
	Category   Category `json:"category"`
	Message    string   `json:"message"`
	Timestamp  string   `json:"timestamp,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Confidence float64  `json:"confidence"`
}

// LintResult is the outcome of linting one video against a RuleSet.
// Score follows the penalty formula clamp(100 - 10*critical - 5*moderate
// - 2*minor, 0, 100).
type LintResult struct {
	Format     VideoFormat     `json:"format"`
	TotalRules int             `json:"totalRules"`
	Violations []RuleViolation `json:"violations"`
	Passed     int             `json:"passed"`
	Critical   int             `json:"critical"`
	Moderate   int             `json:"moderate"`
	Minor      int             `json:"minor"`
	Score      int             `json:"score"`
	Summary    string          `json:"summary"`
}

// MarshalJSON ensures a nil Violations slice marshals as [] not null.
func (r LintResult) MarshalJSON() ([]byte, error) {
	if r.Violations == nil {
		r.Violations = []RuleViolation{}
	}
	type Alias LintResult
	return json.Marshal(Alias(r))
}

// ClassificationResult is the parsed output of the classification stage.
type ClassificationResult struct {
	Format     VideoFormat `json:"format"`
	Confidence float64     `json:"confidence"`
	Reasoning  string      `json:"reasoning,omitempty"`
}

// HookSignals measure the opening seconds of the video.
// Field names mirror the keys of the extraction contract.
type HookSignals struct {
	// TTClaim is seconds until the central claim or promise lands.
	TTClaim float64 `json:"TTClaim"`
	// PB rates the strength of the payoff promise, 0-5.
	PB float64 `json:"PB"`
	// Spec counts concrete specifics (numbers, names) in the hook.
	Spec int `json:"Spec"`
	// QC is 1 when the hook opens with a question or curiosity gap.
	QC int `json:"QC"`
}

// StructureSignals measure narrative shape.
type StructureSignals struct {
	// BC is the beat count, always >= 1.
	BC int `json:"BC"`
	// PM counts pattern interrupts or momentum shifts.
	PM int `json:"PM"`
	// PP is true when the promised payoff actually arrives.
	PP bool `json:"PP"`
	// LC is true when the ending loops back to the hook.
	LC bool `json:"LC"`
}

// ClaritySignals measure how easy the video is to follow.
type ClaritySignals struct {
	WordCount int `json:"wordCount"`
	// Duration is the video length in seconds; never zero (scoring
	// divides by it).
	Duration float64 `json:"duration"`
	// SC rates sentence/concept complexity, 0-5.
	SC float64 `json:"SC"`
	// TJ counts abrupt topic jumps.
	TJ int `json:"TJ"`
	// RD rates redundancy, 0-5.
	RD float64 `json:"RD"`
}

// DeliverySignals measure vocal and energetic execution.
type DeliverySignals struct {
	// LS rates vocal liveliness, 0-5.
	LS float64 `json:"LS"`
	// NS rates naturalness of speech, 0-5.
	NS          float64 `json:"NS"`
	PauseCount  int     `json:"pauseCount"`
	FillerCount int     `json:"fillerCount"`
	// EC is true when energy stays consistent through the video.
	EC bool `json:"EC"`
}

// VideoSignals is the canonical extracted-feature vector consumed by the
// deterministic scoring engine. Every leaf has a documented neutral
// default so scoring never sees a missing value.
type VideoSignals struct {
	Hook      HookSignals      `json:"hook"`
	Structure StructureSignals `json:"structure"`
	Clarity   ClaritySignals   `json:"clarity"`
	Delivery  DeliverySignals  `json:"delivery"`
}

// SubScores holds the four 0-100 dimension scores.
type SubScores struct {
	Hook      int `json:"hook"`
	Structure int `json:"structure"`
	Clarity   int `json:"clarity"`
	Delivery  int `json:"delivery"`
}

// ScoreBreakdown exposes the raw per-metric contributions behind each
// sub-score. Populated for transparency and UI display only; nothing
// downstream does arithmetic on it.
type ScoreBreakdown struct {
	Hook      map[string]float64 `json:"hook"`
	Structure map[string]float64 `json:"structure"`
	Clarity   map[string]float64 `json:"clarity"`
	Delivery  map[string]float64 `json:"delivery"`
	Weights   map[string]float64 `json:"weights"`
}

// ScoreResult is the deterministic scoring engine output. For a fixed
// (VideoSignals, VideoFormat) pair it is bit-for-bit reproducible.
type ScoreResult struct {
	SubScores  SubScores      `json:"subScores"`
	TotalScore int            `json:"totalScore"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
}

// Issue is a retention problem attached to a beat. Issues carrying a
// RuleID originate from lint violations; issues without one are
// oracle-invented.
type Issue struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	RuleID     string   `json:"ruleId,omitempty"`
	RuleName   string   `json:"ruleName,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	BeatNumber int      `json:"beatNumber,omitempty"`
}

// BeatRetention is the oracle's retention read for one beat.
type BeatRetention struct {
	Level    string  `json:"level"`
	Analysis string  `json:"analysis"`
	Issues   []Issue `json:"issues"`
}

// Beat is a time-bounded narrative segment. BeatNumber is unique and
// monotonically increasing within a storyboard; StartTime < EndTime.
// Gaps and overlaps between beats are tolerated but undesirable.
type Beat struct {
	BeatNumber int           `json:"beatNumber"`
	StartTime  float64       `json:"startTime"`
	EndTime    float64       `json:"endTime"`
	Type       string        `json:"type"`
	Title      string        `json:"title"`
	Transcript string        `json:"transcript"`
	Visual     string        `json:"visual"`
	Audio      string        `json:"audio"`
	Retention  BeatRetention `json:"retention"`
}

// Performance carries the storyboard's numeric verdict. The oracle
// proposes prose here, but every numeric field is overwritten with the
// deterministic engine's values before the result is persisted.
type Performance struct {
	HookScore      int    `json:"hookScore"`
	StructureScore int    `json:"structureScore"`
	ClarityScore   int    `json:"clarityScore"`
	DeliveryScore  int    `json:"deliveryScore"`
	TotalScore     int    `json:"totalScore"`
	Analysis       string `json:"analysis"`
	TopFix         string `json:"topFix,omitempty"`
}

// Storyboard is the full narrative analysis of one video.
type Storyboard struct {
	Overview             StoryboardOverview `json:"overview"`
	Beats                []Beat             `json:"beats"`
	Performance          Performance        `json:"performance"`
	ReplicationBlueprint string             `json:"replicationBlueprint,omitempty"`
	RehookVariants       []string           `json:"rehookVariants,omitempty"`
}

// StoryboardOverview summarizes the video at a glance.
type StoryboardOverview struct {
	Title    string      `json:"title"`
	Format   VideoFormat `json:"format"`
	Duration float64     `json:"duration"`
	Summary  string      `json:"summary"`
	HookType string      `json:"hookType,omitempty"`
}

// LintSummary merges deduplicated beat issues with the deterministic
// score and bonus arithmetic. FinalScore is deliberately uncapped; a
// score at or above 100 renders as an S grade.
type LintSummary struct {
	Critical     int      `json:"critical"`
	Moderate     int      `json:"moderate"`
	Minor        int      `json:"minor"`
	UniqueIssues []Issue  `json:"uniqueIssues"`
	BaseScore    int      `json:"baseScore"`
	BonusPoints  int      `json:"bonusPoints"`
	BonusDetails []string `json:"bonusDetails"`
	FinalScore   int      `json:"finalScore"`
}

// MarshalJSON ensures nil slices in LintSummary marshal as [] not null.
func (s LintSummary) MarshalJSON() ([]byte, error) {
	if s.UniqueIssues == nil {
		s.UniqueIssues = []Issue{}
	}
	if s.BonusDetails == nil {
		s.BonusDetails = []string{}
	}
	type Alias LintSummary
	return json.Marshal(Alias(s))
}

// VideoMetadata is optional enrichment fetched from the YouTube Data API.
type VideoMetadata struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Duration     int64  `json:"durationSeconds"`
	ViewCount    uint64 `json:"viewCount"`
}

// StoryboardResult is the persisted output of a completed pipeline run.
// The underscore-prefixed fields are debug surfaces for the dashboard.
type StoryboardResult struct {
	URL            string               `json:"url"`
	IsUploadedFile bool                 `json:"isUploadedFile"`
	Classification ClassificationResult `json:"classification"`
	LintSummary    LintSummary          `json:"lintSummary"`
	Storyboard     Storyboard           `json:"storyboard"`
	Video          *VideoMetadata       `json:"videoMetadata,omitempty"`

	Format             VideoFormat    `json:"_format"`
	Signals            VideoSignals   `json:"_signals"`
	ScoreBreakdown     ScoreBreakdown `json:"_scoreBreakdown"`
	DeterministicScore int            `json:"_deterministicScore"`
}

// JobStatus is the analysis job state machine. Terminal states are
// final; retries re-enter the pipeline from pending.
type JobStatus string

const (
	StatusPending       JobStatus = "pending"
	StatusClassifying   JobStatus = "classifying"
	StatusLinting       JobStatus = "linting"
	StatusStoryboarding JobStatus = "storyboarding"
	StatusCompleted     JobStatus = "completed"
	StatusFailed        JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// AnalysisJob is one persisted pipeline run. Exactly one of VideoURL or
// FileURI is set; stage results accumulate on the row as the pipeline
// advances and are not rolled back on failure.
type AnalysisJob struct {
	ID             string                `json:"id"`
	VideoURL       string                `json:"video_url,omitempty"`
	FileURI        string                `json:"file_uri,omitempty"`
	Status         JobStatus             `json:"status"`
	CurrentStep    string                `json:"current_step,omitempty"`
	Classification *ClassificationResult `json:"classification_result,omitempty"`
	LintResult     *LintResult           `json:"lint_result,omitempty"`
	Storyboard     *StoryboardResult     `json:"storyboard_result,omitempty"`
	ErrorMessage   string                `json:"error_message,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// Source returns the logical video source, preferring the URL form.
func (j *AnalysisJob) Source() string {
	if j.VideoURL != "" {
		return j.VideoURL
	}
	return j.FileURI
}
