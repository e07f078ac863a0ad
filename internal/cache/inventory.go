package cache

import (
	"fmt"
	"strings"
	"time"
)

const (
	CompanyByAccountKeyPrefix = "company:account:%d"
	CompanyByNameKeyPrefix    = "company:name:%s"
)

const (
	CompanyTTL = 10 * time.Minute
)

func CompanyByAccountKey(accountID uint) string {
	return fmt.Sprintf(CompanyByAccountKeyPrefix, accountID)
}

// CompanyByNameKey keys on the exact name; company names are case-sensitive.
func CompanyByNameKey(name string) string {
	return fmt.Sprintf(CompanyByNameKeyPrefix, strings.TrimSpace(name))
}
