package notify

import (
	"fmt"
	"time"
)

// Template wraps a message body in the portal's standard HTML email
// shell, addressed to the named recipient.
func Template(name, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body>
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <div style="border-bottom: 1px solid rgb(157, 157, 189); text-align: center; width: 100%%;">
            <span style="font-size: 35px; font-weight: bold; color: rgb(157, 157, 189);">Lab Portal</span>
        </div>

        <div style="padding: 10px; background-color: #ffffff;">
            <p>Dear %s,</p>
            %s
            <p>Best regards,<br>The Lab Portal Team</p>
        </div>

        <div style="background-color: #f5f5f5; padding: 10px; text-align: center; font-size: 12px; color: #666;">
            <p>&copy; %d Lab Portal. All rights reserved.</p>
            <p>This is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, name, message, time.Now().Year())
}

// RequestReceivedBody is the notification sent to a user whose access
// request was recorded.
func RequestReceivedBody(zerotierID string) string {
	return fmt.Sprintf(`
        <p>Your request for server access has been received. Please wait for approval.</p>
        <p>You will receive an email when your access is approved and an IP address is assigned.</p>
        <p>Your ZeroTier ID: <b>%s</b></p>`, zerotierID)
}

// RequestAdminBody is the notification sent to the administrator when a
// new request arrives.
func RequestAdminBody(userName, zerotierID string) string {
	return fmt.Sprintf(`
        <p>%s has requested server access.</p>
        <p>ZeroTier ID: <b>%s</b></p>
        <p>Please review and approve or reject the request.</p>`, userName, zerotierID)
}

// ApprovedBody carries the issued credentials.
func ApprovedBody(ip, serverCode, sshFolder string) string {
	return fmt.Sprintf(`
        <p>Your request for server access has been approved.</p>
        <p>
            <b>Your Credentials:</b>
            <ul>
                <li>IP Address: %s</li>
                <li>Access Code: %s</li>
                <li>SSH Folder Name: %s</li>
            </ul>
        </p>
        <p>Please refer to the Guides section for detailed instructions on using the server. Access will be available within five minutes.</p>`,
		ip, serverCode, sshFolder)
}

// RejectedBody tells a user their request was removed.
func RejectedBody() string {
	return `
        <p>Your request for server access has been deleted.</p>
        <p>Please contact the admin for more information.</p>`
}

// RevokedBody tells a user their access was withdrawn.
func RevokedBody() string {
	return `
        <p>Your server access has been revoked.</p>
        <p>Please contact the admin for more information.</p>`
}
