package cache

import "fmt"

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
