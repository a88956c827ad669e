package jasoseol

import (
	"fmt"

	"go-jss-crawler/internal/dom"
)

// Landing page and login modal
const (
	selPromo         = "div[data-sentry-component='PopupAdvertise']"
	selPromoClose    = "div[data-sentry-component='PopupAdvertise'] button"
	selLoginOpen     = "button:has-text('회원가입/로그인')"
	selLoginID       = "input[name='id']"
	selLoginPassword = "input[name='password']"
	selLoginSubmit   = `text="로그인"`
	selLoginSuccess  = "span.text-gray-900:has-text('의 맞춤공고예요.')"

	loginURLMarker = "dashboard"
)

// Calendar
const (
	selMonthLabel = "div.calendar-nav > span.current"
	selNextMonth  = "div.calendar-nav img[ng-click='addMonth(1)']"
	selPrevMonth  = "div.calendar-nav img[ng-click='addMonth(-1)']"

	selDayItems    = ":scope > div.calendar-item"
	selDirectLink  = "a.company"
	selCompanyName = "div.company-name span"
	selLabel       = "div.calendar-label"
	selGroupMarker = "div.company[period]"
	selGroupItem   = ".employment-group-item"

	selOverlay        = ".employment-company-group-modal.in"
	selOverlayClose   = "button.modal-close-btn"
	selOverlayTitle   = ".employment-group-title__content"
	selGroupItemTitle = ".employment-group-item__title-content"
	attrExternalID    = "employment_id"
	attrHref          = "href"
)

// Detail page
const (
	selEndDateBlock = `div.flex.gap-\[4px\].mb-\[20px\].body5`
	selApplyLink    = "a.flex-grow:has(button:has-text('채용 사이트'))"
	selJobItem      = "li.flex.justify-center"
	selEssayButton  = "button:has-text('자기소개서 쓰기')"
	selEssayBlock   = `div.py-\[20px\].px-\[16px\] div.font-normal.mb-\[8px\]`

	// endDateSpan is the index of the span holding the closing date.
	endDateSpan = 2
)

var (
	entryLink = dom.Chain{"a.company", "a.employment-company-anchor"}
	popup     = dom.Chain{"div.popup-close", selPromoClose}

	jobContainer  = dom.Chain{"ul.shadow2", `div.rounded-\[6px\].border-gray-200 > ul`}
	jobTitle      = dom.Chain{"span.text-gray-900.body2", "span.text-gray-900.body3_bold"}
	jobType       = dom.Chain{"span.label1_bold.text-secondary-700"}
	essayQuestion = dom.Chain{`div.text-\[14px\]`, "div.text-gray-900.body4"}
	essayLimit    = dom.Chain{`div.text-\[10px\]`, "div.text-gray-500.caption1"}
)

func daySelector(date string) string {
	return fmt.Sprintf("div.day-content[day='%s']", date)
}
