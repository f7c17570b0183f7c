package internal

import (
	adminkit "github.com/enesj/single-tenant-template-sub005"
)

func intPtr(i int) *int { return &i }

func auditColumns() []adminkit.FieldDef {
	return []adminkit.FieldDef{
		{Name: "created_at", Type: adminkit.FieldType{Kind: adminkit.FieldKindTimestamp}},
		{Name: "updated_at", Type: adminkit.FieldType{Kind: adminkit.FieldKindTimestamp}},
		{Name: "created_by", Type: adminkit.FieldType{Kind: adminkit.FieldKindText}},
		{Name: "updated_by", Type: adminkit.FieldType{Kind: adminkit.FieldKindText}},
	}
}

// testEntities mirrors the shape of the shipped schema document: a scoped
// entity with rich validation metadata (suppliers), a scoped entity with a
// check expression and a foreign key (expenses), a scoped entity exercising
// every field kind (users), and a scope-agnostic one (audits).
func testEntities() map[string]*adminkit.EntitySchema {
	users := &adminkit.EntitySchema{
		Key:        "users",
		Table:      "users",
		IDField:    "id",
		ScopeField: "account_id",
		Fields: append([]adminkit.FieldDef{
			{Name: "id", Type: adminkit.FieldType{Kind: adminkit.FieldKindUUID}},
			{Name: "account_id", Type: adminkit.FieldType{Kind: adminkit.FieldKindUUID}},
			{
				Name:    "email",
				Type:    adminkit.FieldType{Kind: adminkit.FieldKindVarchar, Length: 255},
				Options: adminkit.FieldOptions{Required: true, Unique: true},
			},
			{
				Name:    "display_name",
				Type:    adminkit.FieldType{Kind: adminkit.FieldKindText},
				Options: adminkit.FieldOptions{Check: "(>= (length display_name) 2)"},
			},
			{Name: "settings", Type: adminkit.FieldType{Kind: adminkit.FieldKindJSONB}},
			{Name: "last_ip", Type: adminkit.FieldType{Kind: adminkit.FieldKindInet}},
			{Name: "roles", Type: adminkit.FieldType{Kind: adminkit.FieldKindArray, Elem: &adminkit.FieldType{Kind: adminkit.FieldKindText}}},
			{Name: "status", Type: adminkit.FieldType{Kind: adminkit.FieldKindEnum, EnumRef: "user_status"}},
			{
				Name:    "user_agent",
				Type:    adminkit.FieldType{Kind: adminkit.FieldKindText},
				Options: adminkit.FieldOptions{Alias: "client"},
			},
		}, auditColumns()...),
	}

	suppliers := &adminkit.EntitySchema{
		Key:        "suppliers",
		Table:      "suppliers",
		IDField:    "id",
		ScopeField: "account_id",
		Fields: append([]adminkit.FieldDef{
			{Name: "id", Type: adminkit.FieldType{Kind: adminkit.FieldKindUUID}},
			{Name: "account_id", Type: adminkit.FieldType{Kind: adminkit.FieldKindUUID}},
			{
				Name: "display_name",
				Type: adminkit.FieldType{Kind: adminkit.FieldKindVarchar, Length: 120},
				Options: adminkit.FieldOptions{
					Required: true,
					Unique:   true,
					Validation: &adminkit.ValidationMetadata{
						Kind: adminkit.ValidationKindText,
						Constraints: adminkit.ValidationConstraints{
							MinLength: intPtr(3),
							MaxLength: intPtr(50),
						},
						Messages: map[string]string{
							"required":   "supplier name is required",
							"unique":     "already taken",
							"min-length": "name is too short",
						},
					},
				},
			},
			{Name: "contact_email", Type: adminkit.FieldType{Kind: adminkit.FieldKindText}},
		}, auditColumns()...),
	}

	expenses := &adminkit.EntitySchema{
		Key:        "expenses",
		Table:      "expenses",
		IDField:    "id",
		ScopeField: "account_id",
		Fields: append([]adminkit.FieldDef{
			{Name: "id", Type: adminkit.FieldType{Kind: adminkit.FieldKindUUID}},
			{Name: "account_id", Type: adminkit.FieldType{Kind: adminkit.FieldKindUUID}},
			{
				Name:    "amount",
				Type:    adminkit.FieldType{Kind: adminkit.FieldKindDecimal, Precision: 12, Scale: 2},
				Options: adminkit.FieldOptions{Required: true, Check: "(> amount 0)"},
			},
			{
				Name: "supplier_id",
				Type: adminkit.FieldType{Kind: adminkit.FieldKindUUID},
				Options: adminkit.FieldOptions{ForeignKey: &adminkit.ForeignKey{
					Field:        "supplier_id",
					ForeignTable: "suppliers",
					ForeignField: "id",
					DisplayField: "display_name",
				}},
			},
			{Name: "status", Type: adminkit.FieldType{Kind: adminkit.FieldKindEnum, EnumRef: "expense_status"}},
			{Name: "incurred_on", Type: adminkit.FieldType{Kind: adminkit.FieldKindDate}},
		}, auditColumns()...),
	}

	audits := &adminkit.EntitySchema{
		Key:     "audits",
		Table:   "audit_log",
		IDField: "id",
		Fields: []adminkit.FieldDef{
			{Name: "id", Type: adminkit.FieldType{Kind: adminkit.FieldKindUUID}},
			{Name: "action", Type: adminkit.FieldType{Kind: adminkit.FieldKindText}, Options: adminkit.FieldOptions{Required: true}},
			{Name: "created_at", Type: adminkit.FieldType{Kind: adminkit.FieldKindTimestamp}},
		},
	}

	return map[string]*adminkit.EntitySchema{
		"users":     users,
		"suppliers": suppliers,
		"expenses":  expenses,
		"audits":    audits,
	}
}

func testEnums() map[string][]string {
	return map[string][]string{
		"user_status":    {"active", "suspended"},
		"expense_status": {"draft", "submitted", "approved"},
	}
}

func newTestRegistry() adminkit.SchemaRegistry {
	return NewSchemaRegistry(testEntities(), testEnums())
}
