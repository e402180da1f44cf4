package aiproxy

import "strings"

// PromptSet holds the instructional prompts for one analysis session.
// The wording is configuration data: callers may substitute their own set
// as long as the reply formats stay machine-parseable (a literal string
// list for tags, an exact enum member name for category and sentiment,
// and the literal "True"/"False" for the boolean flags).
type PromptSet struct {
	// Priming carries the content and instructs the model not to answer
	// yet; "%s" is replaced with the content text.
	Priming string

	Tags      string
	PostType  string
	Sentiment string
	Hotspot   string
	Creative  string
}

// DefaultPrompts returns the production prompt set.
func DefaultPrompts() PromptSet {
	return PromptSet{
		Priming: "我将给你一段文本，然后给你一系列任务，对于现在这个问题，你不用回答.\n 文本内容:\n%s",

		Tags: "请根据上面给定的文本，总结能代表文本的主题关键词标签，你回答的格式为: ['tag1', 'tag2', 'tag3']",

		PostType: "请根据上面给定的文本，总结最代表文本的类型。\n" +
			"有以下类型：知识类（技术教程、行业预测、工具测评）、观点类（时事评论、行业观察、书评）、生活类（成长感悟、随笔、旅行美食）、娱乐类（吐槽搞笑、迷因、段子）、互动类（投票、接龙挑战、测试）、产品营销类（产品介绍、营销活动）\n" +
			"你回答的格式为:KNOWLEDGE or OPINION or LIFESTYLE or ENTERTAINMENT or INTERACTIVE or PRODUCT_MARKETING\n" +
			"对回答类型的解释：\n" +
			"KNOWLEDGE：知识类，包括技术教程、行业预测、工具测评等。\n" +
			"OPINION：观点类，包括时事评论、行业观察、书评等。\n" +
			"LIFESTYLE：生活类，包括成长感悟、随笔、旅行美食等。\n" +
			"ENTERTAINMENT：娱乐类，包括吐槽搞笑、迷因、段子等。\n" +
			"INTERACTIVE：互动类，包括投票、接龙挑战、测试等。\n" +
			"PRODUCT_MARKETING：产品营销类，包括产品介绍、营销活动等。\n",

		Sentiment: "请根据上面给定的文本，总结能文本情绪偏向，正向、中立还是负向，回答的格式为: NEUTRAL or NEGATIVE or POSITIVE",

		Hotspot: "请根据上面给定的文本，判断是否为热点话题，热点话题就是在最近两年内热门讨论的话题。回答的格式为: True or False",

		Creative: "请根据上面给定的文本，判断是否为创意内容，创意内容是指具有独特性、新颖性、创新性的内容。回答的格式为: True or False",
	}
}

// PrimingFor renders the priming prompt for a content text.
func (p PromptSet) PrimingFor(content string) string {
	return strings.Replace(p.Priming, "%s", content, 1)
}
