package models

// VolunteerSkills is the catalogue a volunteer may pick skills from.
var VolunteerSkills = []string{
	"Accounting", "Advocacy", "Animal Care", "App Development",
	"Arts and Crafts", "Audio Editing", "Blogging", "Bookkeeping",
	"Budgeting", "Campaign Management", "Carpentry",
	"Community Outreach", "Construction", "Content Marketing",
	"Content Writing", "Cooking", "Counseling", "CPR",
	"Crowdfunding", "Crisis Management", "Customer Service",
	"Data Analysis", "Database Management", "Disaster Management",
	"Disaster Relief", "Diversity Training", "Donor Relations",
	"Editing", "Elder Care", "Email Marketing",
	"Emergency Response", "Energy Conservation",
	"Environmental Conservation", "Event Planning",
	"Event Promotion", "Event Coordination",
	"Financial Literacy", "Financial Planning", "First Aid",
	"Fundraising", "Gardening", "Grant Writing",
	"Graphic Design", "Healthcare Assistance", "HTML/CSS",
	"IT Management", "JavaScript", "Leadership", "Legal Assistance",
	"Logistics", "Marketing", "Mediation", "Mental Health Support",
	"Mentoring", "Newsletter Management", "Nutrition Counseling",
	"Peer Support", "Permaculture", "Photography",
	"Plumbing", "Podcasting", "Programming",
	"Project Management", "Proposal Writing", "Public Health",
	"Public Relations", "Public Speaking", "Python",
	"Research", "SEO (Search Engine Optimization)",
	"Shelter Operations", "Social Media Management", "Social Work",
	"Sustainable Development", "Teaching", "Teamwork",
	"Technical Support", "Time Management", "Translation",
	"Transportation", "Tutoring", "UX/UI Design",
	"Veterinary Assistance", "Video Editing", "Videography",
	"Volunteer Coordination", "Volunteer Management",
	"Water Conservation", "Website Development",
	"Wildlife Conservation", "Youth Mentoring",
}
