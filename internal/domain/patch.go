package domain

// Attribute names as persisted. Stores key their field-scoped updates on these.
const (
	AttrIncome        = "income"
	AttrAttachmentURL = "attachmentUrl"
)

// Patch is a single-field update to a BudgetItem. It is either an IncomePatch
// or an AttachmentPatch; no other implementations exist.
type Patch interface {
	// Attribute is the persisted attribute name the patch writes
	Attribute() string
	// Value is the new attribute value
	Value() any
	// Apply returns a copy of item with the patch applied
	Apply(item BudgetItem) BudgetItem

	sealed()
}

// IncomePatch flips an item between income and expense
type IncomePatch struct {
	Income bool
}

func (p IncomePatch) Attribute() string { return AttrIncome }
func (p IncomePatch) Value() any        { return p.Income }
func (IncomePatch) sealed()             {}

func (p IncomePatch) Apply(item BudgetItem) BudgetItem {
	item.Income = p.Income
	return item
}

// AttachmentPatch records where an item's uploaded attachment lives
type AttachmentPatch struct {
	AttachmentURL string
}

func (p AttachmentPatch) Attribute() string { return AttrAttachmentURL }
func (p AttachmentPatch) Value() any        { return p.AttachmentURL }
func (AttachmentPatch) sealed()             {}

func (p AttachmentPatch) Apply(item BudgetItem) BudgetItem {
	item.AttachmentURL = p.AttachmentURL
	return item
}
