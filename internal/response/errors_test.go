package response

import "testing"

func TestGetMessageCoversCodes(t *testing.T) {
	codes := []ErrCode{
		ErrTokenRequired, ErrTokenInvalid, ErrAdminAccessOnly, ErrValidation, ErrNotFound,
		ErrScheduleNotLoaded, ErrCourseNotFound, ErrRefreshInProgress, ErrRefreshQueue, ErrFeedRejected,
		ErrRateLimitExceeded, ErrInternal,
	}
	fallback := GetMessage(ErrCode("SOMETHING_ELSE"))
	for _, code := range codes {
		if msg := GetMessage(code); msg == "" || msg == fallback {
			t.Errorf("GetMessage(%s) = %q", code, msg)
		}
	}
}
