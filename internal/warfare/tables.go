package warfare

import "github.com/ppiankov/omen/internal/model"

type classification struct {
	kind              model.ClassificationType
	name              string
	description       string
	biblicalReference string
	keywords          []string
	patterns          []string
}

// classifications are matched in this order. Keywords and patterns are lowercase.
var classifications = []classification{
	{
		kind:              model.ClassDeception,
		name:              "Deception",
		description:       "Narratives that recast falsehood as truth or hide intent behind benevolent language",
		biblicalReference: "John 8:44",
		keywords: []string{
			"deception", "misinformation", "disinformation", "propaganda", "cover-up",
			"hoax", "great reset", "new world order", "global governance", "fact-check",
		},
		patterns: []string{
			"trust the science", "nothing to see here", "for your own safety",
			"the truth is relative", "debunked conspiracy",
		},
	},
	{
		kind:              model.ClassControl,
		name:              "Control",
		description:       "Systems of surveillance, tracking and economic restriction over individuals",
		biblicalReference: "Revelation 13:16-17",
		keywords: []string{
			"surveillance", "digital id", "social credit", "cbdc", "central bank digital currency",
			"microchip", "biometric", "vaccine passport", "censorship", "cashless",
		},
		patterns: []string{
			"mark of the beast", "buy or sell", "you will own nothing",
			"for the greater good", "compliance will be required",
		},
	},
	{
		kind:              model.ClassFalseLight,
		name:              "False Light",
		description:       "Spiritual counterfeits presented as enlightenment or higher knowledge",
		biblicalReference: "2 Corinthians 11:14",
		keywords: []string{
			"enlightenment", "ascended master", "new age", "spirit guide", "awakening",
			"higher consciousness", "illuminati", "light bearer", "christ consciousness",
		},
		patterns: []string{
			"angel of light", "we are all gods", "divinity within",
			"one world religion", "all paths lead to god",
		},
	},
	{
		kind:              model.ClassProphecyMockery,
		name:              "Prophecy Mockery",
		description:       "Ridicule of prophetic warnings and of belief in the end of the age",
		biblicalReference: "2 Peter 3:3-4",
		keywords: []string{
			"doomsday", "end times", "armageddon", "rapture", "apocalypse",
			"conspiracy theorist", "fearmonger", "doomsayer",
		},
		patterns: []string{
			"where is the promise", "nothing has changed", "the world is not ending",
			"religious extremists", "end of the world again",
		},
	},
	{
		kind:              model.ClassChaos,
		name:              "Chaos",
		description:       "Engineered disorder used to justify a new order",
		biblicalReference: "1 Corinthians 14:33",
		keywords: []string{
			"chaos", "riot", "unrest", "collapse", "pandemic", "famine",
			"civil war", "world war", "martial law", "state of emergency",
		},
		patterns: []string{
			"order out of chaos", "never let a crisis go to waste", "build back better",
			"perfect storm", "the old order must fall",
		},
	},
}

type deity struct {
	name  string
	terms []string
}

// occultSymbolism lists deities and the lowercase terms associated with them.
var occultSymbolism = []deity{
	{name: "Moloch", terms: []string{"moloch", "molech", "child sacrifice"}},
	{name: "Baal", terms: []string{"baal", "golden calf", "arch of baal"}},
	{name: "Lucifer", terms: []string{"lucifer", "morning star", "son of the dawn"}},
	{name: "Ishtar", terms: []string{"ishtar", "queen of heaven", "astarte"}},
	{name: "Saturn", terms: []string{"saturn", "black cube", "saturnalia"}},
	{name: "Apollyon", terms: []string{"apollyon", "abaddon", "bottomless pit"}},
	{name: "Mammon", terms: []string{"mammon", "golden idol"}},
}

// ritualisticPatterns are reported verbatim; matching ignores case.
var ritualisticPatterns = []string{
	"sacrifice",
	"ritual",
	"ceremony",
	"invocation",
	"incantation",
	"altar",
	"Blood Moon",
	"All-Seeing Eye",
	"pentagram",
	"summoning",
	"666",
}
