package slide

// Style dimension names as they appear in manifests.
const (
	DimFont             = "font"
	DimFontSize         = "font_size"
	DimTitleFontSize    = "title_font_size"
	DimBackground       = "background"
	DimTextColor        = "text_color"
	DimBorderWidth      = "border_width"
	DimLogo             = "logo"
	DimBullet           = "bullet"
	DimTable            = "table"
	DimTableBorderWidth = "table_border_width"
	DimTableBorderColor = "table_border_color"
)

// Differences lists the style dimensions in which a and b differ. Content
// (title, body, table grid, inline images) is shared within a pair and is not
// compared.
func Differences(a, b AttributeSet) []string {
	var diffs []string
	if a.Font != b.Font {
		diffs = append(diffs, DimFont)
	}
	if a.FontSize != b.FontSize {
		diffs = append(diffs, DimFontSize)
	}
	if a.TitleFontSize != b.TitleFontSize {
		diffs = append(diffs, DimTitleFontSize)
	}
	if a.Background != b.Background {
		diffs = append(diffs, DimBackground)
	}
	if a.TextColor != b.TextColor {
		diffs = append(diffs, DimTextColor)
	}
	if a.BorderWidth != b.BorderWidth {
		diffs = append(diffs, DimBorderWidth)
	}
	if !sameLogo(a.Logo, b.Logo) {
		diffs = append(diffs, DimLogo)
	}
	if a.Bullet != b.Bullet {
		diffs = append(diffs, DimBullet)
	}
	if (a.Table == nil) != (b.Table == nil) {
		diffs = append(diffs, DimTable)
	} else if a.Table != nil {
		if a.Table.BorderWidth != b.Table.BorderWidth {
			diffs = append(diffs, DimTableBorderWidth)
		}
		if a.Table.BorderColor != b.Table.BorderColor {
			diffs = append(diffs, DimTableBorderColor)
		}
	}
	return diffs
}

func sameLogo(a, b *Logo) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
