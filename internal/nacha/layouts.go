package nacha

// Record type codes, the first character of every record
const (
	RecordFileHeader   = "1"
	RecordBatchHeader  = "5"
	RecordEntryDetail  = "6"
	RecordBatchControl = "8"
	RecordFileControl  = "9"
)

// Field names shared by the layouts, the formatter and the inspector
const (
	FieldRecordType               = "record_type"
	FieldImmediateDestination     = "immediate_destination"
	FieldImmediateOrigin          = "immediate_origin"
	FieldFileCreationDate         = "file_creation_date"
	FieldFileCreationTime         = "file_creation_time"
	FieldFileIDModifier           = "file_id_modifier"
	FieldImmediateDestinationName = "immediate_destination_name"
	FieldImmediateOriginName      = "immediate_origin_name"
	FieldReferenceCode            = "reference_code"

	FieldServiceClassCode         = "service_class_code"
	FieldCompanyName              = "company_name"
	FieldCompanyDiscretionaryData = "company_discretionary_data"
	FieldCompanyIdentification    = "company_identification"
	FieldEntryDescription         = "company_entry_description"
	FieldDescriptiveDate          = "company_descriptive_date"
	FieldEffectiveEntryDate       = "effective_entry_date"
	FieldSettlementDate           = "settlement_date"
	FieldOriginatingDFI           = "originating_dfi"
	FieldBatchNumber              = "batch_number"

	FieldTransactionCode       = "transaction_code"
	FieldReceivingDFI          = "receiving_dfi"
	FieldCheckDigit            = "check_digit"
	FieldDFIAccountNumber      = "dfi_account_number"
	FieldAmount                = "amount"
	FieldIndividualID          = "individual_identification"
	FieldIndividualName        = "individual_name"
	FieldDiscretionaryData     = "discretionary_data"
	FieldAddendaIndicator      = "addenda_record_indicator"
	FieldTraceNumber           = "trace_number"
	FieldEntryAddendaCount     = "entry_addenda_count"
	FieldEntryHash             = "entry_hash"
	FieldTotalDebit            = "total_debit_amount"
	FieldTotalCredit           = "total_credit_amount"
	FieldMessageAuthentication = "message_authentication_code"
	FieldReserved              = "reserved"
	FieldBatchCount            = "batch_count"
	FieldBlockCount            = "block_count"
)

// ServiceClassMixed is used for every batch, whatever its entry mix
const ServiceClassMixed = "200"

// StandardEntryClassPPD is the only entry class this formatter emits
const StandardEntryClassPPD = "PPD"

var FileHeaderLayout = Layout{
	Name: "file_header",
	Fields: []Field{
		{Name: FieldRecordType, Width: 1, Kind: Constant, Value: RecordFileHeader},
		{Name: "priority_code", Width: 2, Kind: Constant, Value: "01"},
		{Name: FieldImmediateDestination, Width: 10, Kind: RightAlphanumeric},
		{Name: FieldImmediateOrigin, Width: 10, Kind: RightAlphanumeric},
		{Name: FieldFileCreationDate, Width: 6, Kind: Numeric},
		{Name: FieldFileCreationTime, Width: 4, Kind: Numeric},
		{Name: FieldFileIDModifier, Width: 1, Kind: Alphanumeric},
		{Name: "record_size", Width: 3, Kind: Constant, Value: "094"},
		{Name: "blocking_factor", Width: 2, Kind: Constant, Value: "10"},
		{Name: "format_code", Width: 1, Kind: Constant, Value: "1"},
		{Name: FieldImmediateDestinationName, Width: 23, Kind: Alphanumeric},
		{Name: FieldImmediateOriginName, Width: 23, Kind: Alphanumeric},
		{Name: FieldReferenceCode, Width: 8, Kind: Alphanumeric},
	},
}

var BatchHeaderLayout = Layout{
	Name: "batch_header",
	Fields: []Field{
		{Name: FieldRecordType, Width: 1, Kind: Constant, Value: RecordBatchHeader},
		{Name: FieldServiceClassCode, Width: 3, Kind: Constant, Value: ServiceClassMixed},
		{Name: FieldCompanyName, Width: 16, Kind: Alphanumeric},
		{Name: FieldCompanyDiscretionaryData, Width: 20, Kind: Alphanumeric},
		{Name: FieldCompanyIdentification, Width: 10, Kind: Alphanumeric},
		{Name: "standard_entry_class_code", Width: 3, Kind: Constant, Value: StandardEntryClassPPD},
		{Name: FieldEntryDescription, Width: 10, Kind: Alphanumeric},
		{Name: FieldDescriptiveDate, Width: 6, Kind: Alphanumeric},
		{Name: FieldEffectiveEntryDate, Width: 6, Kind: Numeric},
		{Name: FieldSettlementDate, Width: 3, Kind: Alphanumeric},
		{Name: "originator_status_code", Width: 1, Kind: Constant, Value: "1"},
		{Name: FieldOriginatingDFI, Width: 8, Kind: Numeric},
		{Name: FieldBatchNumber, Width: 7, Kind: Numeric},
	},
}

var EntryDetailLayout = Layout{
	Name: "entry_detail",
	Fields: []Field{
		{Name: FieldRecordType, Width: 1, Kind: Constant, Value: RecordEntryDetail},
		{Name: FieldTransactionCode, Width: 2, Kind: Numeric},
		{Name: FieldReceivingDFI, Width: 8, Kind: Numeric},
		{Name: FieldCheckDigit, Width: 1, Kind: Numeric},
		{Name: FieldDFIAccountNumber, Width: 17, Kind: Alphanumeric},
		{Name: FieldAmount, Width: 10, Kind: Numeric},
		{Name: FieldIndividualID, Width: 15, Kind: Alphanumeric},
		{Name: FieldIndividualName, Width: 22, Kind: Alphanumeric},
		{Name: FieldDiscretionaryData, Width: 2, Kind: Alphanumeric},
		{Name: FieldAddendaIndicator, Width: 1, Kind: Constant, Value: "0"},
		{Name: FieldTraceNumber, Width: 15, Kind: Numeric},
	},
}

var BatchControlLayout = Layout{
	Name: "batch_control",
	Fields: []Field{
		{Name: FieldRecordType, Width: 1, Kind: Constant, Value: RecordBatchControl},
		{Name: FieldServiceClassCode, Width: 3, Kind: Constant, Value: ServiceClassMixed},
		{Name: FieldEntryAddendaCount, Width: 6, Kind: Numeric},
		{Name: FieldEntryHash, Width: 10, Kind: Numeric},
		{Name: FieldTotalDebit, Width: 12, Kind: Numeric},
		{Name: FieldTotalCredit, Width: 12, Kind: Numeric},
		{Name: FieldCompanyIdentification, Width: 10, Kind: Alphanumeric},
		{Name: FieldMessageAuthentication, Width: 19, Kind: Alphanumeric},
		{Name: FieldReserved, Width: 6, Kind: Alphanumeric},
		{Name: FieldOriginatingDFI, Width: 8, Kind: Numeric},
		{Name: FieldBatchNumber, Width: 7, Kind: Numeric},
	},
}

var FileControlLayout = Layout{
	Name: "file_control",
	Fields: []Field{
		{Name: FieldRecordType, Width: 1, Kind: Constant, Value: RecordFileControl},
		{Name: FieldBatchCount, Width: 6, Kind: Numeric},
		{Name: FieldBlockCount, Width: 6, Kind: Numeric},
		{Name: FieldEntryAddendaCount, Width: 8, Kind: Numeric},
		{Name: FieldEntryHash, Width: 10, Kind: Numeric},
		{Name: FieldTotalDebit, Width: 12, Kind: Numeric},
		{Name: FieldTotalCredit, Width: 12, Kind: Numeric},
		{Name: FieldReserved, Width: 39, Kind: Alphanumeric},
	},
}

// layoutFor returns the layout for a record type code
func layoutFor(recordType byte) (Layout, bool) {
	switch string(recordType) {
	case RecordFileHeader:
		return FileHeaderLayout, true
	case RecordBatchHeader:
		return BatchHeaderLayout, true
	case RecordEntryDetail:
		return EntryDetailLayout, true
	case RecordBatchControl:
		return BatchControlLayout, true
	case RecordFileControl:
		return FileControlLayout, true
	default:
		return Layout{}, false
	}
}
