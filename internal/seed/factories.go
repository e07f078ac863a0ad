package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// factory produces fake but plausible entity fields. Names and emails are
// de-duplicated because the store enforces uniqueness on both.
type factory struct {
	faker *gofakeit.Faker
	now   time.Time
	names map[string]struct{}
}

type postSpec struct {
	MediaURL    string
	Description string
	PostedAt    time.Time
}

func newFactory(seed int64, now time.Time) *factory {
	return &factory{
		faker: gofakeit.New(seed),
		now:   now,
		names: make(map[string]struct{}),
	}
}

func (f *factory) companyIdentity() (name, email string) {
	base := f.faker.Company()
	name = base
	for i := 2; ; i++ {
		if _, taken := f.names[strings.ToLower(name)]; !taken {
			break
		}
		name = fmt.Sprintf("%s %d", base, i)
	}
	f.names[strings.ToLower(name)] = struct{}{}

	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-':
			return '.'
		}
		return -1
	}, strings.ToLower(name))
	slug = strings.Trim(slug, ".")
	if slug == "" {
		slug = "company"
	}
	return name, fmt.Sprintf("%s.%d@example.com", slug, len(f.names))
}

func (f *factory) post() postSpec {
	return postSpec{
		MediaURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()),
		Description: f.faker.Paragraph(1, 3, 12, " "),
		PostedAt:    f.faker.DateRange(f.now.AddDate(0, 0, -90), f.now),
	}
}
