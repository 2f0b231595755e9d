package ingest

import (
	"fmt"
	"time"

	"github.com/mixelka/emailtriage/pkg/models"
)

type sample struct {
	From    string
	Subject string
	Body    string
}

// Five messages in each category, adjacent pairs form a thread
var samples = []sample{
	// Meeting
	{"john.smith@techcorp.com", "Team meeting scheduled for Monday", "Hi, I have scheduled our weekly team meeting for Monday at 10 AM. Please review the agenda beforehand and come prepared with your updates. The meeting link will be sent separately."},
	{"sarah.johnson@clientco.com", "Meeting request: Project kickoff discussion", "Hello, I would like to schedule a meeting with you next week to discuss the project kickoff. Are you available on Tuesday or Wednesday afternoon? Please let me know your preferred time slot."},
	{"mike.wilson@partners.net", "Can we schedule a call this week?", "Hi there, I wanted to touch base about the proposal we discussed. Could we schedule a quick 30-minute call this week to align on next steps? Let me know what works for you."},
	{"emily.brown@enterprise.com", "URGENT: Emergency meeting at 3 PM today", "We need to have an emergency meeting today at 3 PM to discuss the production issue. This is critical and requires immediate attention from all team members. Please confirm your attendance ASAP."},
	{"david.lee@consulting.biz", "Rescheduling our Thursday meeting", "I need to reschedule our meeting originally planned for Thursday. Would Friday morning work for you instead? Sorry for the inconvenience. Please let me know at your earliest convenience."},

	// Financial
	{"accounts@financecorp.com", "Invoice #A12345 - Payment due in 3 days", "This is a reminder that invoice #A12345 for $5,000 is due within 3 days. Please process the payment at your earliest convenience to avoid late fees. Let me know if you need any additional documentation."},
	{"billing@softwareservice.com", "Your monthly subscription payment", "Your monthly subscription payment of $299 is due on February 15th. Please ensure sufficient funds are available in your account. You can view your invoice in the billing portal."},
	{"robert.clark@accounting.net", "URGENT: Payment authorization required", "We need your immediate authorization to process the vendor payment of $15,000. This is time-sensitive and affects our contract obligations. Please approve in the system ASAP."},
	{"finance.team@corporation.com", "Expense report approval needed", "Your expense report for $1,250 from last month is pending approval. Please review and approve it in the expense management system so we can process reimbursement this cycle."},
	{"payroll@humanresources.com", "Tax documents for 2025 available", "Your W-2 forms and tax documents for 2025 are now available in the payroll portal. Please download and review them. Contact us if you notice any discrepancies."},

	// Report
	{"analytics@datacompany.com", "Weekly project status report", "Here is this week's project status update. We are on track with most deliverables, but need your input on the design mockups. Please review the attached files and share your feedback by end of day."},
	{"james.martinez@operations.com", "Q1 Performance Review Summary", "Attached is the Q1 performance review summary for your team. Overall results are positive with 15% growth. Please review and prepare for our discussion meeting next week."},
	{"reports@analytics.io", "Monthly sales report - January 2026", "The January sales report shows a 23% increase compared to last month. Key highlights include strong performance in the enterprise segment. Full detailed analysis is attached."},
	{"lisa.anderson@research.org", "Market research findings report", "We have completed the market research study and compiled our findings. The report indicates significant opportunities in the APAC region. Please review and let's discuss implications for our strategy."},
	{"ops.team@logistics.com", "Annual review: Operations report 2025", "This is the comprehensive operations review for 2025. We've documented all processes, improvements made, and recommendations for 2026. Your input on section 3 would be valuable."},

	// Support
	{"support@techplatform.com", "Question about your recent order #9876", "We noticed you recently placed order #9876 with us. Do you have any questions about shipping or delivery? Our team is here to help. Just reply to this email and we will assist you promptly."},
	{"help@customercare.com", "How can we help you today?", "We saw that you visited our help center but didn't submit a ticket. Is there anything we can assist you with? Our support team is available 24/7 to answer your questions."},
	{"technical.support@software.net", "Re: Issue with login authentication", "Thank you for reporting the login authentication issue. Our technical team has investigated and identified the root cause. We've implemented a fix that should resolve your problem. Please try logging in again."},
	{"service@cloudprovider.com", "Need help with your account setup?", "We noticed you started setting up your account but haven't completed the process. Would you like assistance? Our onboarding specialists can help you get started quickly. Reply with your questions."},
	{"customercare@retailstore.com", "Feedback request: Your recent purchase", "How was your experience with your recent purchase? We value your feedback and would love to hear about your experience. It takes just 2 minutes to complete our survey."},

	// General
	{"newsletter@marketing.com", "Monthly Newsletter - Latest Updates", "Check out our latest newsletter with tips, tricks, and updates from our team. Discover new features and how to make the most of our platform. Click here to read more."},
	{"notifications@socialnetwork.com", "You have 15 new notifications", "You have 15 new notifications from your social network. Check out who viewed your profile, who sent you messages, and the latest updates from your connections."},
	{"info@industryevent.com", "Invitation: Tech Conference 2026", "You're invited to attend Tech Conference 2026, the premier event for technology professionals. Join us March 15-17 for keynotes, workshops, and networking. Early bird registration ends soon."},
	{"updates@productlaunch.com", "Exciting new features just launched!", "We're thrilled to announce the launch of our new features including dark mode, advanced analytics, and mobile app improvements. Check out what's new and start exploring today."},
	{"community@professional.org", "Weekly digest: Industry news and updates", "Here's your weekly digest of the most important industry news and updates. This week's highlights include new regulations, market trends, and upcoming events in your area."},
}

const sampleSpacing = 30 * time.Minute

// SampleMailbox builds a demo mailbox for owner. Messages come in pairs
// sharing a thread: an incoming message followed by the owner's reply.
// Ids are stable so seeding twice inserts nothing new.
func SampleMailbox(owner string, now time.Time) []models.Message {
	if owner == "" {
		owner = "Me"
	}

	msgs := make([]models.Message, 0, len(samples))
	for i, s := range samples {
		msg := models.Message{
			ID:         fmt.Sprintf("sample-%02d", i),
			ThreadID:   fmt.Sprintf("thread-%d", i/2),
			From:       s.From,
			To:         owner,
			Subject:    s.Subject,
			Body:       s.Body,
			ReceivedAt: now.Add(-time.Duration(i) * sampleSpacing),
			NeedsReply: true,
		}

		if i%2 == 1 {
			msg.From = owner
			msg.To = s.From
			msg.Subject = "Re: " + samples[i-1].Subject
			msg.NeedsReply = false
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
