package redisrepo

import "fmt"

const (
	GLOBAL_FEED_KEY = "feed:global:%d"  // <limit>
	AUTHOR_FEED_KEY = "feed:author:%s"  // <authorID>
	FEED_KEYS_GLOB  = "feed:*"
	USER_CACHE_KEY  = "user-cache:%s" // <userID>
)

func GlobalFeedKey(limit int) string {
	return fmt.Sprintf(GLOBAL_FEED_KEY, limit)
}

func AuthorFeedKey(authorID string) string {
	return fmt.Sprintf(AUTHOR_FEED_KEY, authorID)
}

func UserCacheKey(userID string) string {
	return fmt.Sprintf(USER_CACHE_KEY, userID)
}
