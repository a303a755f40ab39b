package fieldtypes

// systemCatalog is the seeded, non-deletable set of field identities every
// installation starts with. FIRST_NAME, LAST_NAME and BIRTH_DATE are the
// required trio: a form cannot be published unless all three are mapped.
var systemCatalog = []FieldType{
	{
		Key: "FIRST_NAME", CanonicalName: "firstName",
		Category: CategoryPersonal, DataType: DataString,
		Required: true, System: true,
		Aliases: []string{"first name", "firstname", "given name", "vorname", "prénom"},
	},
	{
		Key: "LAST_NAME", CanonicalName: "lastName",
		Category: CategoryPersonal, DataType: DataString,
		Required: true, System: true,
		Aliases: []string{"last name", "lastname", "surname", "family name", "nachname", "nom"},
	},
	{
		Key: "BIRTH_DATE", CanonicalName: "birthDate",
		Category: CategoryPersonal, DataType: DataDate,
		Required: true, System: true,
		Aliases: []string{"birth date", "birthdate", "date of birth", "dob", "geburtsdatum"},
	},
	{
		Key: "GENDER", CanonicalName: "gender",
		Category: CategoryPersonal, DataType: DataString,
		System:  true,
		Aliases: []string{"sex", "geschlecht"},
	},
	{
		Key: "EMAIL", CanonicalName: "email",
		Category: CategoryContact, DataType: DataEmail,
		System:  true,
		Aliases: []string{"e-mail", "mail", "email address", "e-mail-adresse"},
	},
	{
		Key: "PHONE", CanonicalName: "phone",
		Category: CategoryContact, DataType: DataPhone,
		System:  true,
		Aliases: []string{"phone number", "telephone", "mobile", "telefon", "handy"},
	},
	{
		Key: "STREET", CanonicalName: "street",
		Category: CategoryContact, DataType: DataString,
		System:  true,
		Aliases: []string{"street address", "address", "strasse", "straße"},
	},
	{
		Key: "POSTAL_CODE", CanonicalName: "postalCode",
		Category: CategoryContact, DataType: DataString,
		System:  true,
		Aliases: []string{"zip", "zip code", "postcode", "plz", "postleitzahl"},
	},
	{
		Key: "CITY", CanonicalName: "city",
		Category: CategoryContact, DataType: DataString,
		System:  true,
		Aliases: []string{"town", "ort", "stadt"},
	},
	{
		Key: "COUNTRY", CanonicalName: "country",
		Category: CategoryContact, DataType: DataString,
		System:  true,
		Aliases: []string{"land"},
	},
	{
		Key: "INSURANCE_PROVIDER", CanonicalName: "insuranceProvider",
		Category: CategoryInsurance, DataType: DataString,
		System:  true,
		Aliases: []string{"insurance", "insurer", "health insurance", "krankenkasse"},
	},
	{
		Key: "INSURANCE_NUMBER", CanonicalName: "insuranceNumber",
		Category: CategoryInsurance, DataType: DataString,
		System:  true,
		Aliases: []string{"insurance no", "policy number", "versichertennummer"},
	},
	{
		Key: "ALLERGIES", CanonicalName: "allergies",
		Category: CategoryMedical, DataType: DataText,
		System:  true,
		Aliases: []string{"allergy", "allergien"},
	},
	{
		Key: "MEDICATIONS", CanonicalName: "medications",
		Category: CategoryMedical, DataType: DataText,
		System:  true,
		Aliases: []string{"current medications", "medication", "medikamente"},
	},
	{
		Key: "CONDITIONS", CanonicalName: "preexistingConditions",
		Category: CategoryMedical, DataType: DataText,
		System:  true,
		Aliases: []string{"pre-existing conditions", "medical history", "vorerkrankungen"},
	},
	{
		Key: "PRIVACY_CONSENT", CanonicalName: "privacyConsent",
		Category: CategoryConsent, DataType: DataBoolean,
		System:  true,
		Aliases: []string{"privacy", "gdpr consent", "datenschutz", "einwilligung"},
	},
	{
		Key: "SIGNATURE", CanonicalName: "signature",
		Category: CategoryConsent, DataType: DataSignature,
		System:  true,
		Aliases: []string{"patient signature", "unterschrift"},
	},
}
