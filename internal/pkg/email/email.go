package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/qs3c/gym_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendReservationConfirmed 发送预约成功通知
func (s *Service) SendReservationConfirmed(to, username string, courtNumber int, start, end time.Time) error {
	subject := "预约成功 - 场馆预订平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">预约成功</h2>
        <p>您好，%s！</p>
        <p>您的场地预约已确认：</p>
        <div style="background-color: #f3f4f6; padding: 15px; margin: 20px 0;">
            <p>场地编号：%d 号场</p>
            <p>日期：%s</p>
            <p>时间：%s - %s</p>
        </div>
        <p>请按时到场，如需取消请提前操作。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, username, courtNumber, start.Format("2006-01-02"), start.Format("15:04"), end.Format("15:04"))

	return s.sendHTML(to, subject, body)
}

// SendRenewalNotice 发送续费账单通知
func (s *Service) SendRenewalNotice(to, username string, amount float64, dueDate time.Time, paymentCode string) error {
	subject := "会员续费账单 - 场馆预订平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">会员即将到期</h2>
        <p>您好，%s！</p>
        <p>您的会员即将到期，已为您生成续费账单：</p>
        <div style="background-color: #f3f4f6; padding: 15px; margin: 20px 0;">
            <p>应付金额：%.2f</p>
            <p>到期日：%s</p>
            <p>付款编号：</p>
            <div style="text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px;">%s</div>
        </div>
        <p>您可以到前台出示付款编号现金支付，也可以在线支付。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, username, amount, dueDate.Format("2006-01-02"), paymentCode)

	return s.sendHTML(to, subject, body)
}

// SendPaymentReceipt 发送支付成功回执
func (s *Service) SendPaymentReceipt(to, username, paymentCode string, amount float64, paidAt time.Time) error {
	subject := "支付成功 - 场馆预订平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">支付成功</h2>
        <p>您好，%s！</p>
        <div style="background-color: #f3f4f6; padding: 15px; margin: 20px 0;">
            <p>付款编号：%s</p>
            <p>金额：%.2f</p>
            <p>支付时间：%s</p>
        </div>
        <p>感谢您的支持！</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, username, paymentCode, amount, paidAt.Format("2006-01-02 15:04"))

	return s.sendHTML(to, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
