package cmd

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// validateStartupConfig validates startup configuration from the shared config source.
// It returns an error when any configured value is malformed or violates constraints.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// It accepts a value getter and returns nil when all configured values are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateOptionalBool(get, "debug", &validationErrs)
	validateTelegramConfig(get, &validationErrs)
	validateAPIConfig(get, &validationErrs)
	validatePendingConfig(get, &validationErrs)
	validateRedisConfig(get, &validationErrs)
	validateOptionalStringNonEmpty(get, "settings.web.listen", &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

// validateTelegramConfig validates the bot token, the expert chat and the poller.
func validateTelegramConfig(get configGetter, errs *[]string) {
	validateRequiredString(get, "settings.telegram.token", errs)
	validateOptionalURL(get, "settings.telegram.api", errs)
	validateOptionalIntMin(get, "settings.telegram.poll_timeout_seconds", 1, errs)

	raw := get("settings.telegram.expert_chat_id")
	if raw == nil {
		appendValidationError(errs, "settings.telegram.expert_chat_id is required")
		return
	}
	if id, err := parseStrictInt64(raw); err != nil {
		appendValidationError(errs, "settings.telegram.expert_chat_id must be an integer")
	} else if id == 0 {
		appendValidationError(errs, "settings.telegram.expert_chat_id must not be 0")
	}
}

// validateAPIConfig validates the web API endpoint and its timeouts.
func validateAPIConfig(get configGetter, errs *[]string) {
	if get("settings.api.url") == nil {
		appendValidationError(errs, "settings.api.url is required")
	} else {
		validateOptionalURL(get, "settings.api.url", errs)
	}

	validateOptionalIntMin(get, "settings.api.timeout_seconds", 1, errs)
	validateOptionalIntMin(get, "settings.api.predictor_timeout_seconds", 1, errs)
}

// validatePendingConfig validates the pending question store,
// the redis backend needs settings.db.redis.addr.
func validatePendingConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.pending.ttl_seconds", 1, errs)

	raw := get("settings.pending.backend")
	if raw == nil {
		return
	}

	backend, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "settings.pending.backend must be a string")
		return
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case pendingBackendMemory:
	case pendingBackendRedis:
		validateRequiredString(get, "settings.db.redis.addr", errs)
	default:
		appendValidationError(errs, "settings.pending.backend must be one of [%s, %s]",
			pendingBackendMemory, pendingBackendRedis)
	}
}

// validateRedisConfig validates redis-related startup configuration values.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateRedisConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.db.redis.db", 0, errs)
}

// validateRequiredString validates that key is configured as a non-empty string.
func validateRequiredString(get configGetter, key string, errs *[]string) {
	if get(key) == nil {
		appendValidationError(errs, "%s is required", key)
		return
	}

	validateOptionalStringNonEmpty(get, key, errs)
}

// validateOptionalBool validates an optionally configured boolean key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalBool(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, ok := parseStrictBool(raw); !ok {
		appendValidationError(errs, "%s must be a boolean", key)
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
// It accepts a getter, the key, a minimum value, and an error collector pointer and appends validation errors.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalURL validates an optionally configured absolute URL key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalURL(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string URL", key)
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		appendValidationError(errs, "%s must not be empty", key)
		return
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		appendValidationError(errs, "%s must be a valid absolute URL", key)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

// parseStrictBool parses a value as boolean using strict conversion rules.
// It accepts a raw value and returns the parsed boolean and whether parsing succeeded.
func parseStrictBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		if math.Trunc(v) != v {
			return false, false
		}
		return int64(v) != 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, false
		}
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// parseStrictInt parses a value as a strict integer.
// It accepts a raw value and returns the parsed int and an error when parsing fails.
func parseStrictInt(value any) (int, error) {
	parsed, err := parseStrictInt64(value)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return int(parsed), nil
}

// parseStrictInt64 parses a value as a strict int64.
// Telegram chat ids overflow int32, so this is the base parser.
func parseStrictInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse int")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictString parses a value as a strict string.
// It accepts a raw value and returns the parsed string and an error when parsing fails.
func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// appendValidationError appends a formatted validation error to the collector.
// It accepts an error slice pointer, a format string, and format arguments, and has no return value.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
