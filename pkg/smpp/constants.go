package smpp

// Command IDs. The high bit distinguishes requests (0) from responses (1);
// a response id is always its request id | 0x80000000.
const (
	CommandBindReceiver      uint32 = 0x00000001
	CommandBindTransmitter   uint32 = 0x00000002
	CommandQuerySM           uint32 = 0x00000003
	CommandSubmitSM          uint32 = 0x00000004
	CommandDeliverSM         uint32 = 0x00000005
	CommandUnbind            uint32 = 0x00000006
	CommandReplaceSM         uint32 = 0x00000007
	CommandCancelSM          uint32 = 0x00000008
	CommandBindTransceiver   uint32 = 0x00000009
	CommandOutbind           uint32 = 0x0000000B
	CommandEnquireLink       uint32 = 0x00000015
	CommandSubmitMulti       uint32 = 0x00000021
	CommandAlertNotification uint32 = 0x00000102
	CommandDataSM            uint32 = 0x00000103
	CommandBroadcastSM       uint32 = 0x00000111
	CommandQueryBroadcastSM  uint32 = 0x00000112
	CommandCancelBroadcastSM uint32 = 0x00000113

	CommandGenericNack uint32 = 0x80000000

	CommandBindReceiverResp      uint32 = CommandBindReceiver | CommandGenericNack
	CommandBindTransmitterResp   uint32 = CommandBindTransmitter | CommandGenericNack
	CommandQuerySMResp           uint32 = CommandQuerySM | CommandGenericNack
	CommandSubmitSMResp          uint32 = CommandSubmitSM | CommandGenericNack
	CommandDeliverSMResp         uint32 = CommandDeliverSM | CommandGenericNack
	CommandUnbindResp            uint32 = CommandUnbind | CommandGenericNack
	CommandReplaceSMResp         uint32 = CommandReplaceSM | CommandGenericNack
	CommandCancelSMResp          uint32 = CommandCancelSM | CommandGenericNack
	CommandBindTransceiverResp   uint32 = CommandBindTransceiver | CommandGenericNack
	CommandEnquireLinkResp       uint32 = CommandEnquireLink | CommandGenericNack
	CommandSubmitMultiResp       uint32 = CommandSubmitMulti | CommandGenericNack
	CommandDataSMResp            uint32 = CommandDataSM | CommandGenericNack
	CommandBroadcastSMResp       uint32 = CommandBroadcastSM | CommandGenericNack
	CommandQueryBroadcastSMResp  uint32 = CommandQueryBroadcastSM | CommandGenericNack
	CommandCancelBroadcastSMResp uint32 = CommandCancelBroadcastSM | CommandGenericNack
)

// Command status codes (the SMPP error enumeration, exposed verbatim per spec §6).
const (
	StatusOK              uint32 = 0x00000000
	StatusInvMsgLen       uint32 = 0x00000001
	StatusInvCmdLen       uint32 = 0x00000002
	StatusInvCmdID        uint32 = 0x00000003
	StatusInvBnd          uint32 = 0x00000004
	StatusAlreadyBnd      uint32 = 0x00000005
	StatusInvPrtFlg       uint32 = 0x00000006
	StatusInvRegDlvFlg    uint32 = 0x00000007
	StatusSysErr          uint32 = 0x00000008
	StatusInvSrcAdr       uint32 = 0x0000000A
	StatusInvDstAdr       uint32 = 0x0000000B
	StatusInvMsgID        uint32 = 0x0000000C
	StatusBindFail        uint32 = 0x0000000D
	StatusInvPaswd        uint32 = 0x0000000E
	StatusInvSysID        uint32 = 0x0000000F
	StatusCancelFail      uint32 = 0x00000011
	StatusReplaceFail     uint32 = 0x00000013
	StatusMsgQFul         uint32 = 0x00000014
	StatusInvSerTyp       uint32 = 0x00000015
	StatusInvNumDests     uint32 = 0x00000033
	StatusInvDLName       uint32 = 0x00000034
	StatusInvDestFlag     uint32 = 0x00000040
	StatusInvSubRep       uint32 = 0x00000042
	StatusInvEsmClass     uint32 = 0x00000043
	StatusCntSubDL        uint32 = 0x00000044
	StatusSubmitFail      uint32 = 0x00000045
	StatusInvSrcTON       uint32 = 0x00000048
	StatusInvSrcNPI       uint32 = 0x00000049
	StatusInvDstTON       uint32 = 0x00000050
	StatusInvDstNPI       uint32 = 0x00000051
	StatusInvSysTyp       uint32 = 0x00000053
	StatusInvRepFlag      uint32 = 0x00000054
	StatusInvNumMsgs      uint32 = 0x00000055
	StatusThrottled       uint32 = 0x00000058
	StatusInvSched        uint32 = 0x00000061
	StatusInvExpiry       uint32 = 0x00000062
	StatusInvDftMsgID     uint32 = 0x00000063
	StatusXTAppn          uint32 = 0x00000064
	StatusXPAppn          uint32 = 0x00000065
	StatusXRAppn          uint32 = 0x00000066
	StatusQueryFail       uint32 = 0x00000067
	StatusInvOptParStream uint32 = 0x000000C0
	StatusOptParNotAllwd  uint32 = 0x000000C1
	StatusInvParLen       uint32 = 0x000000C2
	StatusMissingOptParam uint32 = 0x000000C3
	StatusInvOptParamVal  uint32 = 0x000000C4
	StatusDeliveryFailure uint32 = 0x000000FE
	StatusUnknownErr      uint32 = 0x000000FF
)

// statusNames backs StatusError.Error(); codes with no entry fall back to raw hex.
var statusNames = map[uint32]string{
	StatusOK:              "ESME_ROK",
	StatusInvMsgLen:       "ESME_RINVMSGLEN",
	StatusInvCmdLen:       "ESME_RINVCMDLEN",
	StatusInvCmdID:        "ESME_RINVCMDID",
	StatusInvBnd:          "ESME_RINVBNDSTS",
	StatusAlreadyBnd:      "ESME_RALYBND",
	StatusInvPrtFlg:       "ESME_RINVPRTFLG",
	StatusInvRegDlvFlg:    "ESME_RINVREGDLVFLG",
	StatusSysErr:          "ESME_RSYSERR",
	StatusInvSrcAdr:       "ESME_RINVSRCADR",
	StatusInvDstAdr:       "ESME_RINVDSTADR",
	StatusInvMsgID:        "ESME_RINVMSGID",
	StatusBindFail:        "ESME_RBINDFAIL",
	StatusInvPaswd:        "ESME_RINVPASWD",
	StatusInvSysID:        "ESME_RINVSYSID",
	StatusCancelFail:      "ESME_RCANCELFAIL",
	StatusReplaceFail:     "ESME_RREPLACEFAIL",
	StatusMsgQFul:         "ESME_RMSGQFUL",
	StatusInvSerTyp:       "ESME_RINVSERTYP",
	StatusInvNumDests:     "ESME_RINVNUMDESTS",
	StatusInvDLName:       "ESME_RINVDLNAME",
	StatusInvDestFlag:     "ESME_RINVDESTFLAG",
	StatusInvSubRep:       "ESME_RINVSUBREP",
	StatusInvEsmClass:     "ESME_RINVESMCLASS",
	StatusCntSubDL:        "ESME_RCNTSUBDL",
	StatusSubmitFail:      "ESME_RSUBMITFAIL",
	StatusInvSrcTON:       "ESME_RINVSRCTON",
	StatusInvSrcNPI:       "ESME_RINVSRCNPI",
	StatusInvDstTON:       "ESME_RINVDSTTON",
	StatusInvDstNPI:       "ESME_RINVDSTNPI",
	StatusInvSysTyp:       "ESME_RINVSYSTYP",
	StatusInvRepFlag:      "ESME_RINVREPFLAG",
	StatusInvNumMsgs:      "ESME_RINVNUMMSGS",
	StatusThrottled:       "ESME_RTHROTTLED",
	StatusInvSched:        "ESME_RINVSCHED",
	StatusInvExpiry:       "ESME_RINVEXPIRY",
	StatusInvDftMsgID:     "ESME_RINVDFTMSGID",
	StatusXTAppn:          "ESME_RX_T_APPN",
	StatusXPAppn:          "ESME_RX_P_APPN",
	StatusXRAppn:          "ESME_RX_R_APPN",
	StatusQueryFail:       "ESME_RQUERYFAIL",
	StatusInvOptParStream: "ESME_RINVOPTPARSTREAM",
	StatusOptParNotAllwd:  "ESME_ROPTPARNOTALLWD",
	StatusInvParLen:       "ESME_RINVPARLEN",
	StatusMissingOptParam: "ESME_RMISSINGOPTPARAM",
	StatusInvOptParamVal:  "ESME_RINVOPTPARAMVAL",
	StatusDeliveryFailure: "ESME_RDELIVERYFAILURE",
	StatusUnknownErr:      "ESME_RUNKNOWNERR",
}

// ESM class bits.
const (
	EsmClassDefault      = 0x00
	EsmClassDatagramMode = 0x01
	EsmClassForwardMode  = 0x02
	EsmClassStoreForward = 0x03
	EsmClassUDHI         = 0x40
	EsmClassReplyPath    = 0x80
)

// Data coding scheme octet. Values only; transcoding the payload itself is out of scope.
const (
	DataCodingDefault     = 0x00
	DataCodingIA5         = 0x01
	DataCodingBinary      = 0x02
	DataCodingISO88591    = 0x03
	DataCodingISO88595    = 0x06
	DataCodingISO88598    = 0x07
	DataCodingUCS2        = 0x08
	DataCodingPictogram   = 0x09
	DataCodingISO2022JP   = 0x0A
	DataCodingExtJISX0212 = 0x0D
	DataCodingKSC5601     = 0x0E
)

// TON (Type of Number).
const (
	TONUnknown          = 0x00
	TONInternational    = 0x01
	TONNational         = 0x02
	TONNetworkSpecific  = 0x03
	TONSubscriberNumber = 0x04
	TONAlphanumeric     = 0x05
	TONAbbreviated      = 0x06
)

// NPI (Numbering Plan Indicator).
const (
	NPIUnknown    = 0x00
	NPIISDN       = 0x01
	NPIData       = 0x03
	NPITelex      = 0x04
	NPILandMobile = 0x06
	NPINational   = 0x08
	NPIPrivate    = 0x09
	NPIERMES      = 0x0A
	NPIIP         = 0x0E
	NPIWAP        = 0x12
)

// Registered delivery flag.
const (
	RegisteredDeliveryNone           = 0x00
	RegisteredDeliverySuccessFailure = 0x01
	RegisteredDeliveryFailure        = 0x02
	RegisteredDeliverySuccess        = 0x03
	RegisteredDeliveryIntermediate   = 0x10
)

// Priority flag. v3.4 allows 0..3; v5.0 extends the range to 0..4 (validated
// against the session's negotiated effective version, §9 open question).
const (
	PriorityLevel0 = 0x00
	PriorityLevel1 = 0x01
	PriorityLevel2 = 0x02
	PriorityLevel3 = 0x03
	PriorityLevel4 = 0x04 // v5.0 only
)

// Message state, carried in query_sm_resp and the message_state_option TLV.
const (
	MessageStateEnroute       = 0x01
	MessageStateDelivered     = 0x02
	MessageStateExpired       = 0x03
	MessageStateDeleted       = 0x04
	MessageStateUndeliverable = 0x05
	MessageStateAccepted      = 0x06
	MessageStateUnknown       = 0x07
	MessageStateRejected      = 0x08
	MessageStateSkipped       = 0x09
)

// Dest flag for submit_multi destination entries.
const (
	DestFlagSMEAddress       = 0x01
	DestFlagDistributionList = 0x02
)

// Optional parameter (TLV) tags.
const (
	TagDestAddrSubunit            = 0x0005
	TagDestNetworkType            = 0x0006
	TagDestBearerType             = 0x0007
	TagDestTelematicsID           = 0x0008
	TagSourceAddrSubunit          = 0x000D
	TagSourceNetworkType          = 0x000E
	TagSourceBearerType           = 0x000F
	TagSourceTelematicsID         = 0x0010
	TagQOSTimeToLive              = 0x0017
	TagPayloadType                = 0x0019
	TagAdditionalStatusInfoText   = 0x001D
	TagReceiptedMessageID         = 0x001E
	TagMsMsgWaitFacilities        = 0x0030
	TagPrivacyIndicator           = 0x0201
	TagSourceSubaddress           = 0x0202
	TagDestSubaddress             = 0x0203
	TagUserMessageReference       = 0x0204
	TagUserResponseCode           = 0x0205
	TagSourcePort                 = 0x020A
	TagDestinationPort            = 0x020B
	TagSarMsgRefNum               = 0x020C
	TagLanguageIndicator          = 0x020D
	TagSarTotalSegments           = 0x020E
	TagSarSegmentSeqnum           = 0x020F
	TagSCInterfaceVersion         = 0x0210
	TagCallbackNumPresInd         = 0x0302
	TagCallbackNumAtag            = 0x0303
	TagNumberOfMessages           = 0x0304
	TagCallbackNum                = 0x0381
	TagDpfResult                  = 0x0420
	TagSetDpf                     = 0x0421
	TagMsAvailabilityStatus       = 0x0422
	TagNetworkErrorCode           = 0x0423
	TagMessagePayload             = 0x0424
	TagDeliveryFailureReason      = 0x0425
	TagMoreMessagesToSend         = 0x0426
	TagMessageStateOption         = 0x0427
	TagCongestionState            = 0x0428
	TagUssdServiceOp              = 0x0501
	TagBroadcastChannelIndicator  = 0x0600
	TagBroadcastContentType       = 0x0601
	TagBroadcastRepNum            = 0x0605
	TagBroadcastFrequencyInterval = 0x0606
	TagBroadcastAreaIdentifier    = 0x0607
	TagBroadcastErrorStatus       = 0x0609
	TagBroadcastAreaSuccess       = 0x060E
	TagDisplayTime                = 0x1201
	TagSmsSignal                  = 0x1203
	TagMsValidity                 = 0x1204
	TagAlertOnMessageDelivery     = 0x130C
	TagItsReplyType               = 0x1380
	TagItsSessionInfo             = 0x1383
)

// Vendor-specific TLV range: passed through as opaque bytes without interpretation (§9).
const (
	TagVendorSpecificLow  = 0x1400
	TagVendorSpecificHigh = 0x3FFF
)

// Maximum field lengths. C-Octet string maxima include the mandatory NUL terminator.
const (
	MaxSystemIDLength             = 16
	MaxPasswordLength             = 9
	MaxSystemTypeLength           = 13
	MaxServiceTypeLength          = 6
	MaxAddressLength              = 21
	MaxAddressRangeLength         = 41
	MaxShortMessageLength         = 254
	MaxMessageIDLength            = 65
	MaxDateTimeLength             = 17
	MaxDestinationsPerSubmitMulti = 254
)

// SMPP interface_version octet values (C7).
const (
	InterfaceVersion33 uint8 = 0x33
	InterfaceVersion34 uint8 = 0x34
	InterfaceVersion50 uint8 = 0x50
)

// DefaultPort is the well-known SMPP port (spec §6).
const DefaultPort = 2775

// DefaultMaxFrameSize bounds a single PDU's command_length (spec §4.3).
const DefaultMaxFrameSize = 65536
