package wizard

// WizardError is a custom error type for creation wizard errors
type WizardError string

// Error implements the error interface
func (e WizardError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrDraftNotFound   WizardError = "draft not found or timed out"
	ErrNotDraftOwner   WizardError = "draft belongs to another user"
	ErrWrongStep       WizardError = "choice does not match the current step"
	ErrUnknownRole     WizardError = "role is not a valid choice"
	ErrUnknownActivity WizardError = "activity is not in the catalog"
	ErrUnknownTier     WizardError = "tier is not in the catalog"
	ErrCommentTooLong  WizardError = "comment exceeds the maximum length"
	ErrNilConfig       WizardError = "config cannot be nil"
	ErrNilGroupService WizardError = "group service cannot be nil"
	ErrNilCatalog      WizardError = "catalog cannot be nil"
	ErrNilClock        WizardError = "clock cannot be nil"
	ErrNilUUID         WizardError = "UUID generator cannot be nil"
)
