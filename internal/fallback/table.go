package fallback

// #region table

// defaultTable holds canned student replies per persona and category.
var defaultTable = Table{
	"alpha": {
		Encouragement: {
			"Thank you for the encouragement! I really appreciate your support. I'm feeling more confident about this now.",
			"That's exactly what I needed to hear. I'll definitely take your advice and keep working hard.",
			"I'm grateful for your help. This makes me feel more optimistic about my engineering journey.",
		},
		Clarification: {
			"I'm still a bit confused about some details. Could you help me understand this better?",
			"I think I understand, but I want to make sure I've got it right. Could you clarify a bit more?",
			"I'm following along, but I'd like to make sure I understand completely. Could you explain that differently?",
		},
		Planning: {
			"I'm thinking about setting a goal for this semester, but I'm not sure where to start. Could we break it into smaller steps?",
			"I'm willing to make a plan. Maybe I could start with one club and see how it goes?",
			"I'm not sure if my timeline is realistic, but I want to try. What would you do first?",
		},
		Exploration: {
			"That's interesting. I'd like to learn more about this topic and how it applies to my situation.",
			"I'm interested in exploring that, but I'm not sure if I'm ready yet. What would be a good first step?",
			"I've been wondering about that too. I'm thinking about talking to a professor, but I'm a little nervous.",
		},
		Other: {
			"I appreciate you sharing that with me. I'll think about how I can use this information.",
			"This is helpful. I'm going to consider what you've said and see how it fits with my goals.",
			"Okay, I think that makes sense. I'm willing to give it a try.",
		},
	},
	"beta": {
		Encouragement: {
			"I really appreciate you saying that. It means a lot to me, even though I still feel uncertain.",
			"Thank you for being so understanding. I'm trying to believe in myself more.",
			"Your support helps, but I'm still worried about whether I can really succeed in engineering.",
		},
		Clarification: {
			"I'm not sure I understand completely. I don't want to seem stupid, but could you explain it differently?",
			"I'm still confused about this. Maybe I'm not cut out for engineering after all.",
			"I don't want to bother you with more questions, but I'm still struggling to understand.",
		},
		Planning: {
			"I don't know if I can stick to a plan. Maybe I should start with something really small?",
			"I'm worried I'll fall behind even with a schedule, but I guess I could try.",
			"I'm not sure what a realistic goal would be for someone like me.",
		},
		Exploration: {
			"I'm not sure about this. Maybe I'm not the kind of student who does that.",
			"I might be interested, but I'm afraid people will think I'm not qualified.",
			"I guess I've thought about research a little, but I don't know if I'm good enough.",
		},
		Other: {
			"I'm not sure about this, but I'm trying to understand better. Maybe I can figure it out.",
			"I'm still learning about this, but I appreciate you taking the time to explain.",
			"I'm not confident about this yet, but I'll try to work through it.",
		},
	},
	"delta": {
		Encouragement: {
			"Thanks for the feedback! I'll definitely consider what you've said and see how it applies to my situation.",
			"I appreciate your perspective. Let me think about this and see how I can implement your suggestions.",
			"That's helpful advice. I'll work on incorporating that into my approach.",
		},
		Clarification: {
			"I see what you mean, but I'd like to make sure I understand correctly. Could you clarify?",
			"I think I get it, but let me make sure I've got the right approach. Could you confirm?",
			"I understand the general idea, but I want to make sure I'm implementing it correctly.",
		},
		Planning: {
			"I want to make sure my plan keeps me competitive for internships. What deadlines should I be aware of?",
			"I'm doing well so far, but I want a clear timeline for applications this year.",
			"I'm considering a few options. Which one would look best to employers?",
		},
		Exploration: {
			"I'm open to exploring clubs and internships, but I want to make sure it's the right approach for my career.",
			"I'm not really interested in research, but I'd like to know more about hands-on opportunities.",
			"I want to make sure I'm choosing a specialization that leads to good job opportunities.",
		},
		Other: {
			"I see. Let me think about this and see how it applies to my situation and goals.",
			"That's a good point. I'll consider this approach and see how it fits with my plans.",
			"I understand. Let me evaluate this and see how I can incorporate it into my strategy.",
		},
	},
	"echo": {
		Encouragement: {
			"Excellent! That's exactly the kind of guidance I was looking for. I'm excited to put this into practice.",
			"Perfect! I'm confident this approach will work well for me. Thanks for the great advice!",
			"That's fantastic! I love learning new strategies. I'm ready to take on this challenge.",
		},
		Clarification: {
			"I think I understand, but let me make sure I've got it right. Could you confirm the key points?",
			"I'm following along well, but I want to make sure I'm not missing anything important.",
			"That makes sense! I just want to double-check that I'm approaching this the right way.",
		},
		Planning: {
			"I'm ready to set some ambitious goals! I want to balance research and an internship this year.",
			"I've already started planning. Could you help me prioritize the deadlines?",
			"I'm confident I can handle a packed schedule. What should come first?",
		},
		Exploration: {
			"That's a great point! I'm excited to explore this further and see how it can help me.",
			"I'm really interested in research and graduate school. Which labs should I look into?",
			"I love exploring new paths! I want to learn about both technical and leadership roles.",
		},
		Other: {
			"Excellent! This is exactly the kind of information I was looking for. I'm ready to dive in.",
			"Perfect! I love learning about new approaches. I'm confident this will be valuable for me.",
			"That's great to hear! I'm excited to keep going.",
		},
	},
}

// #endregion table
