package resilience

import "regexp"

// ErrorCategory is one of the classifier's output categories.
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryCircuitBreaker ErrorCategory = "CIRCUIT_BREAKER"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategorySystemError    ErrorCategory = "SYSTEM_ERROR"
	CategoryUnknown        ErrorCategory = "UNKNOWN"
)

// RetryStrategy names the suggested retry pattern for a classified error.
type RetryStrategy string

const (
	StrategyImmediate          RetryStrategy = "IMMEDIATE"
	StrategyExponentialBackoff RetryStrategy = "EXPONENTIAL_BACKOFF"
	StrategyLinearBackoff      RetryStrategy = "LINEAR_BACKOFF"
	StrategyDelayed            RetryStrategy = "DELAYED"
	StrategyNoRetry            RetryStrategy = "NO_RETRY"
)

// ErrorClassification is the structured result of classifying an error.
type ErrorClassification struct {
	Category                ErrorCategory
	IsRetryable             bool
	RetryStrategy           RetryStrategy
	MaxRetries              int
	ShouldTripBreaker       bool
	FallbackAction          string
	UserNotificationRequired bool
	Severity                string
	Details                 string
}

// pattern is one registered classification rule. Rules run in registration
// order; the first match wins.
type pattern struct {
	matchType    func(err error) bool
	matchMessage *regexp.Regexp
	matchCode    string
	result       ErrorClassification
}

// Classifier maps errors to an ErrorClassification using message-regex
// matching rules, checked in registration order (custom patterns first).
// Classify matches on the error message only; a rule's matchType and
// matchCode are not consulted.
type Classifier struct {
	custom   []pattern
	defaults []pattern
}

// NewClassifier builds a Classifier with the default rule set (spec §4.8).
func NewClassifier() *Classifier {
	c := &Classifier{}
	c.defaults = []pattern{
		{
			matchMessage: regexp.MustCompile(`(?i)timeout|timed out`),
			result: ErrorClassification{
				Category: CategoryTransient, IsRetryable: true,
				RetryStrategy: StrategyExponentialBackoff, MaxRetries: 3,
				ShouldTripBreaker: true, Severity: "warning",
			},
		},
		{
			matchMessage: regexp.MustCompile(`(?i)connection (refused|reset)|network|dial tcp`),
			result: ErrorClassification{
				Category: CategoryTransient, IsRetryable: true,
				RetryStrategy: StrategyExponentialBackoff, MaxRetries: 5,
				ShouldTripBreaker: true, Severity: "warning",
			},
		},
		{
			matchMessage: regexp.MustCompile(`(?i)unauthorized|forbidden|invalid (argument|input)|bad request`),
			result: ErrorClassification{
				Category: CategoryClientError, IsRetryable: false,
				RetryStrategy: StrategyNoRetry, Severity: "error",
				UserNotificationRequired: true,
			},
		},
		{
			matchMessage: regexp.MustCompile(`(?i)circuit breaker`),
			result: ErrorClassification{
				Category: CategoryCircuitBreaker, IsRetryable: false,
				RetryStrategy: StrategyDelayed, Severity: "warning",
				FallbackAction: "use_cached_result",
			},
		},
		{
			matchMessage: regexp.MustCompile(`(?i)disk|out of memory|no space left|permission denied`),
			result: ErrorClassification{
				Category: CategorySystemError, IsRetryable: false,
				RetryStrategy: StrategyNoRetry, Severity: "critical",
				UserNotificationRequired: true,
			},
		},
	}
	return c
}

// AddPattern registers a custom rule, checked before the defaults.
func (c *Classifier) AddPattern(matchMessage *regexp.Regexp, matchCode string, result ErrorClassification) {
	c.custom = append(c.custom, pattern{matchMessage: matchMessage, matchCode: matchCode, result: result})
}

// Classify returns the classification for err, falling back to
// CategoryUnknown/StrategyNoRetry when nothing matches.
func (c *Classifier) Classify(err error) ErrorClassification {
	if err == nil {
		return ErrorClassification{Category: CategoryUnknown, RetryStrategy: StrategyNoRetry}
	}
	msg := err.Error()
	for _, p := range append(append([]pattern{}, c.custom...), c.defaults...) {
		if p.matchMessage != nil && p.matchMessage.MatchString(msg) {
			res := p.result
			res.Details = msg
			return res
		}
	}
	return ErrorClassification{
		Category:      CategoryUnknown,
		IsRetryable:   false,
		RetryStrategy: StrategyNoRetry,
		Severity:      "error",
		Details:       msg,
	}
}
