package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func GetDBPath() string {
	value, exists := os.LookupEnv("DB_PATH")
	if exists {
		return value
	}
	return "data/video_db.sqlite"
}

func GetVideoDir() string {
	value, exists := os.LookupEnv("VIDEO_DIR")
	if exists {
		return value
	}
	return "video-input"
}

// extra scan roots beyond GetVideoDir(), comma-separated
func GetExtraVideoDirs() []string {
	value, exists := os.LookupEnv("VIDEO_DIRS_EXTRA")
	if !exists || value == "" {
		return nil
	}
	var dirs []string
	for _, d := range strings.Split(value, ",") {
		d = strings.TrimSpace(d)
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func GetOutputDir() string {
	value, exists := os.LookupEnv("OUTPUT_DIR")
	if exists {
		return value
	}
	return "video-output"
}

func GetScanInterval() time.Duration {
	return getSeconds("SCAN_INTERVAL", 30*time.Second)
}

func GetAIInterval() time.Duration {
	return getSeconds("AI_INTERVAL", 10*time.Second)
}

func GetProcessInterval() time.Duration {
	return getSeconds("PROCESS_INTERVAL", 10*time.Second)
}

func GetMoveInterval() time.Duration {
	return getSeconds("MOVE_INTERVAL", 10*time.Second)
}

func GetConfirmInterval() time.Duration {
	return getSeconds("CONFIRM_INTERVAL", 60*time.Second)
}

func GetConfirmBatchSize() int {
	return getInt("CONFIRM_BATCH_SIZE", 10)
}

func GetAutoConfirmed() bool {
	return getBool("AUTO_CONFIRMED")
}

func GetAutoAccept() bool {
	return getBool("AUTO_ACCEPT")
}

func GetOpenAIKey() (string, error) {
	value, exists := os.LookupEnv("OPENAI_API_KEY")
	if exists && value != "" {
		return value, nil
	}
	return "", fmt.Errorf("please set OPENAI_API_KEY")
}

func GetOpenAIModel() string {
	value, exists := os.LookupEnv("OPENAI_MODEL")
	if exists {
		return value
	}
	return "gpt-4o-mini"
}

func GetAITimeout() time.Duration {
	return getSeconds("AI_TIMEOUT", 2*time.Minute)
}

func GetTranscodeTimeout() time.Duration {
	return getSeconds("TRANSCODE_TIMEOUT", 6*time.Hour)
}

func GetBusyTimeout() time.Duration {
	return getMillis("DB_BUSY_TIMEOUT_MS", 5*time.Second)
}

func GetMaxRetries() int {
	return getInt("DB_MAX_RETRIES", 5)
}

func GetRetryDelay() time.Duration {
	return getMillis("DB_RETRY_DELAY_MS", 100*time.Millisecond)
}

// how long a worker may sit on a claim before the reaper takes it back
func GetClaimLeaseTTL() time.Duration {
	return getSeconds("CLAIM_LEASE_TTL", 8*time.Hour)
}

// smallest transcode output accepted as a success
func GetMinOutputBytes() int64 {
	value, exists := os.LookupEnv("MIN_OUTPUT_BYTES")
	if exists {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return 1024 * 1024
}

func GetListenAddr() string {
	value, exists := os.LookupEnv("LISTEN_ADDR")
	if exists {
		return value
	}
	return ":8000"
}

func GetLogLevel() string {
	value, exists := os.LookupEnv("LOG_LEVEL")
	if exists {
		return value
	}
	return "debug"
}

func getSeconds(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

func getMillis(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getBool(key string) bool {
	if value, exists := os.LookupEnv(key); exists {
		lower := strings.ToLower(value)
		if lower == "on" || lower == "1" || lower == "true" || lower == "yes" {
			return true
		}
	}
	return false
}
