package veracore

import "fmt"

// XPath selectors for the Veracore UI. The fee window is an ExtJS x-window;
// most inputs inside it carry generated ids, so locators key on class names,
// id prefixes and roles rather than fixed ids.
const (
	selUsername    = `//input[@name='username']`
	selPassword    = `//input[@name='password']`
	selLoginBtn    = `//span[text()='Login']/..`
	selAccFeeBtn   = `//*[@id='ui-accfee-btn']`
	selLoadingMask = `//div[contains(@class,'x-mask')]`
	selFeeWindow   = `//div[contains(@class,'x-window') and contains(.,'Accessorial Fee')]`

	selFeeSearchBox = selFeeWindow +
		`//input[contains(@class,'x-form-text') and @type='text' and not(@placeholder='System Search...')]`

	selFirstFeeRow = `//tr[contains(@class,'x-grid-row')][1]`

	selCustomerCombo = `//input[contains(@id,'combo-') and contains(@id,'-inputEl')]`
	selDateField     = `//input[contains(@id,'datefield-') and contains(@id,'-inputEl')]`
	selQtyByID       = `//input[contains(@id,'numberfield-') and contains(@id,'-inputEl')]`
	selQtyByRole     = `//input[@role='spinbutton' and contains(@class,'x-form-field')]`

	// the post-login URL carries an auth token query parameter
	urlAuthMarker = "auth="
)

func selSystemAnchor(systemID string) string {
	return fmt.Sprintf(`//a[contains(@onclick, "'%s'")]`, systemID)
}

func selFeeRowExact(feeType string) string {
	return fmt.Sprintf(`//tr[contains(@class,'x-grid-row') and td[2]/div[normalize-space(text())='%s']]`, feeType)
}

func selFeeRowPrefix(prefix string) string {
	return fmt.Sprintf(`//tr[contains(@class,'x-grid-row') and td[2]/div[contains(normalize-space(text()), '%s')]]`, prefix)
}
