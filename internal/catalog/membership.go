package catalog

// MembershipView is the materialized view the membership catalog describes.
const MembershipView = "membershipMV"

// Membership is the catalog of membershipMV columns.
var Membership = MustNew(
	Attribute{Name: "package_user_relation_id", Type: Integer},
	Attribute{Name: "package_user_relation_status", Type: Text},
	Attribute{Name: "start_date", Type: Timestamp},
	Attribute{Name: "end_date", Type: Timestamp},
	Attribute{Name: "cancellation_date", Type: Timestamp},
	Attribute{Name: "package_id", Type: Integer},
	Attribute{Name: "package_type", Type: Integer},
	Attribute{Name: "package_name", Type: Text},
	Attribute{Name: "package_active", Type: Boolean},
	Attribute{Name: "package_source", Type: Text},
	Attribute{Name: "invoice_item_package_id", Type: Integer},
	Attribute{Name: "invoice_item_package_status", Type: Integer},
	Attribute{Name: "quantity", Type: Integer},
	Attribute{Name: "promotion_id", Type: Integer},
	Attribute{Name: "discount_id", Type: Integer},
	Attribute{Name: "period_start", Type: Timestamp},
	Attribute{Name: "period_end", Type: Timestamp},
	Attribute{Name: "mls_access_customer_requests_id", Type: Integer},
	Attribute{Name: "mls_access_customer_requests_status", Type: Text},
	Attribute{Name: "ticket_number", Type: Text},
	Attribute{Name: "user_id", Type: Integer},
	Attribute{Name: "full_name", Type: Text},
	Attribute{Name: "username", Type: Text},
	Attribute{Name: "user_status", Type: Text},
	Attribute{Name: "email", Type: Text},
	Attribute{Name: "membership_since", Type: Timestamp},
	Attribute{Name: "location", Type: Text},
)
