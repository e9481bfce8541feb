package advance

import "github.com/warp/payroll-engine/generic"

// Resource is the ledger resource type for the advance domain.
type Resource string

func (r Resource) ResourceID() string     { return string(r) }
func (r Resource) ResourceDomain() string { return "advance" }

var _ generic.ResourceType = Resource("")

const ResourceCashAdvance Resource = "cash_advance"

// PolicyID groups every advance transaction of an employee in one ledger.
const PolicyID generic.PolicyID = "cash-advance"

func init() {
	generic.RegisterResource(ResourceCashAdvance)
}
