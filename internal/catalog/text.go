// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package catalog

import (
	"fmt"
	"strings"
)

// TextExtractor selects the text that feeds an item's content vector.
type TextExtractor func(item *Item) string

// Text field names accepted by ExtractorFor.
const (
	TextDescription         = "description"
	TextTitle               = "title"
	TextTitleAndDescription = "title_description"
)

// DescriptionText returns the item description.
func DescriptionText(item *Item) string {
	return item.Description
}

// TitleText returns the item title.
func TitleText(item *Item) string {
	return item.Title
}

// TitleAndDescriptionText joins title and description.
func TitleAndDescriptionText(item *Item) string {
	switch {
	case item.Description == "":
		return item.Title
	case item.Title == "":
		return item.Description
	default:
		return item.Title + ". " + item.Description
	}
}

// ExtractorFor returns the extractor registered under name.
func ExtractorFor(name string) (TextExtractor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TextDescription:
		return DescriptionText, nil
	case TextTitle:
		return TitleText, nil
	case TextTitleAndDescription:
		return TitleAndDescriptionText, nil
	default:
		return nil, &ConfigurationError{
			Field:  "recommend.text_field",
			Reason: fmt.Sprintf("unknown text field %q", name),
		}
	}
}
