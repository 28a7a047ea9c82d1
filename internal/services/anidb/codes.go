package anidb

// ReplyCode is the three-digit status AniDB prefixes every reply with.
type ReplyCode int

// Reply codes the client understands; anything else is a protocol failure.
const (
	CodeLoginAccepted           ReplyCode = 200
	CodeLoginAcceptedNewVersion ReplyCode = 201
	CodeLoggedOut               ReplyCode = 203
	CodeFile                    ReplyCode = 220
	CodeAnime                   ReplyCode = 230
	CodeGroup                   ReplyCode = 250
	CodeNoSuchFile              ReplyCode = 320
	CodeMultipleFiles           ReplyCode = 322
	CodeNoSuchAnime             ReplyCode = 330
	CodeNoSuchGroup             ReplyCode = 350
	CodeLoginFailed             ReplyCode = 500
	CodeLoginFirst              ReplyCode = 501
	CodeAccessDenied            ReplyCode = 502
	CodeClientOutdated          ReplyCode = 503
	CodeClientBanned            ReplyCode = 504
	CodeIllegalInput            ReplyCode = 505
	CodeInvalidSession          ReplyCode = 506
	CodeBanned                  ReplyCode = 555
	CodeUnknownCommand          ReplyCode = 598
	CodeInternalError           ReplyCode = 600
	CodeOutOfService            ReplyCode = 601
	CodeServerBusy              ReplyCode = 602
	CodeTimeout                 ReplyCode = 604
)

type replyClass int

const (
	classSuccess replyClass = iota
	classNotFound
	classSessionInvalid
	classFlood
	classAuthFatal
	classPermanent
	classUnknown
)

func (c ReplyCode) classify() replyClass {
	switch c {
	case CodeLoginAccepted, CodeLoginAcceptedNewVersion, CodeLoggedOut, CodeFile, CodeAnime, CodeGroup:
		return classSuccess
	case CodeNoSuchFile, CodeMultipleFiles, CodeNoSuchAnime, CodeNoSuchGroup:
		return classNotFound
	case CodeLoginFirst, CodeInvalidSession:
		return classSessionInvalid
	case CodeOutOfService, CodeServerBusy, CodeTimeout:
		return classFlood
	case CodeLoginFailed, CodeAccessDenied, CodeClientOutdated, CodeClientBanned, CodeBanned:
		return classAuthFatal
	case CodeIllegalInput, CodeUnknownCommand, CodeInternalError:
		return classPermanent
	default:
		return classUnknown
	}
}
